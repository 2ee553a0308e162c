package handler

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"charkeep/internal/form"
	"charkeep/internal/model"
	"charkeep/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay free of business logic; everything goes through the
// injected service.
func RegisterRoutes(app *fiber.App, svc service.CharacterService) {
	app.Get("/healthz", LivenessProbe())
	app.Get("/health", HealthCheck(svc))

	app.Get("/", ListCharacters(svc))
	app.Get("/characters/new", NewCharacterForm())
	app.Post("/characters", CreateCharacter(svc))
	app.Get("/characters/:id", ShowCharacter(svc))
	app.Get("/characters/:id/edit", EditCharacterForm(svc))
	app.Post("/characters/:id", UpdateCharacter(svc))
	app.Post("/characters/:id/delete", DeleteCharacter(svc))

	app.Get("/uploads/:filename", ServePortrait(svc))
}

// LivenessProbe is a simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// HealthCheck verifies the record store is reachable.
func HealthCheck(svc service.CharacterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := svc.List(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// ListCharacters renders the index with all characters sorted by name.
func ListCharacters(svc service.CharacterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chars, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.Render("index", fiber.Map{
			"Characters": chars,
			"Flash":      c.Query("flash"),
			"FlashKind":  c.Query("kind"),
		})
	}
}

// NewCharacterForm renders a blank creation form: level "1", attributes
// at 10.
func NewCharacterForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Render("form", fiber.Map{
			"Character":       model.NewBlankCharacter(),
			"AttributeFields": model.AttributeFields,
			"Action":          "/characters",
			"SubmitLabel":     "Create character",
			"Flash":           c.Query("flash"),
			"FlashKind":       c.Query("kind"),
		})
	}
}

// CreateCharacter handles the multipart creation form.
func CreateCharacter(svc service.CharacterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ch := form.Extract(formValues(c), nil)

		img, closeImg, err := imageUpload(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "cannot open uploaded file")
		}
		defer closeImg()

		created, err := svc.Create(c.UserContext(), ch, img)
		switch {
		case errors.Is(err, service.ErrNameRequired):
			return redirectWithFlash(c, "/characters/new", "error", "Character name is required.")
		case errors.Is(err, service.ErrInvalidImageFormat):
			return redirectWithFlash(c, "/characters/"+created.ID, "warning", "Invalid image format. Use png, jpg, jpeg, gif or webp.")
		case err != nil:
			return err
		}
		return redirectWithFlash(c, "/characters/"+created.ID, "success", "Character created.")
	}
}

// ShowCharacter renders the detail view; unknown ids are a 404.
func ShowCharacter(svc service.CharacterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ch, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return fiber.ErrNotFound
			}
			return err
		}
		return c.Render("view", fiber.Map{
			"Character":       ch,
			"AttributeFields": model.AttributeFields,
			"Flash":           c.Query("flash"),
			"FlashKind":       c.Query("kind"),
		})
	}
}

// EditCharacterForm renders the pre-filled form; unknown ids are a 404.
func EditCharacterForm(svc service.CharacterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ch, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return fiber.ErrNotFound
			}
			return err
		}
		return c.Render("form", fiber.Map{
			"Character":       ch,
			"AttributeFields": model.AttributeFields,
			"Action":          "/characters/" + ch.ID,
			"SubmitLabel":     "Save changes",
			"Flash":           c.Query("flash"),
			"FlashKind":       c.Query("kind"),
		})
	}
}

// UpdateCharacter handles the multipart update form.
func UpdateCharacter(svc service.CharacterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		ch := form.Extract(formValues(c), nil)

		img, closeImg, err := imageUpload(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "cannot open uploaded file")
		}
		defer closeImg()

		updated, err := svc.Update(c.UserContext(), id, ch, img)
		switch {
		case errors.Is(err, service.ErrNotFound):
			return fiber.ErrNotFound
		case errors.Is(err, service.ErrNameRequired):
			return redirectWithFlash(c, "/characters/"+id+"/edit", "error", "Character name is required.")
		case errors.Is(err, service.ErrInvalidImageFormat):
			return redirectWithFlash(c, "/characters/"+updated.ID, "warning", "Invalid image format. Use png, jpg, jpeg, gif or webp.")
		case err != nil:
			return err
		}
		return redirectWithFlash(c, "/characters/"+updated.ID, "success", "Character updated.")
	}
}

// DeleteCharacter removes a character and its portrait; unknown ids are a
// 404 before anything is deleted.
func DeleteCharacter(svc service.CharacterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return fiber.ErrNotFound
			}
			return err
		}
		return redirectWithFlash(c, "/", "info", "Character removed.")
	}
}

// ServePortrait streams a stored portrait from whichever image backend is
// configured.
func ServePortrait(svc service.CharacterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, info, err := svc.Portrait(c.UserContext(), c.Params("filename"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return fiber.ErrNotFound
			}
			return err
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		return c.SendStream(rc, int(info.Size))
	}
}

// textFields are the form field names copied verbatim into url.Values for
// the form codec.
var textFields = []string{
	"name", "race", "character_class", "background",
	"level", "hit_points", "armor_class", "speed",
	"proficiencies", "equipment", "spells", "notes",
}

func formValues(c *fiber.Ctx) url.Values {
	v := url.Values{}
	for _, f := range textFields {
		v.Set(f, c.FormValue(f))
	}
	for _, a := range model.AttributeFields {
		k := "attr_" + a.Key
		v.Set(k, c.FormValue(k))
	}
	return v
}

// imageUpload opens the optional "image" multipart file. A missing file
// yields a nil upload, which the service treats as "keep the previous
// portrait".
func imageUpload(c *fiber.Ctx) (*service.ImageUpload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("image")
	if err != nil || fh == nil || fh.Filename == "" {
		return nil, noop, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	img := &service.ImageUpload{
		Reader:      f,
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
	}
	return img, func() { _ = f.Close() }, nil
}

// redirectWithFlash carries the one-shot status message as query
// parameters on the redirect, keeping the server stateless between
// requests.
func redirectWithFlash(c *fiber.Ctx, location, kind, msg string) error {
	q := url.Values{}
	q.Set("flash", msg)
	q.Set("kind", kind)
	return c.Redirect(location+"?"+q.Encode(), fiber.StatusSeeOther)
}
