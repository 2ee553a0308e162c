package handler

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"charkeep/internal/http/view"
	"charkeep/internal/model"
	"charkeep/internal/service"
	serviceMocks "charkeep/internal/service/mocks"
	"charkeep/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, mockSvc service.CharacterService) *fiber.App {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: ErrorHandler(),
	})
	RegisterRoutes(app, mockSvc)
	return app
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// multipartForm builds a multipart body from text fields plus an optional
// file part named "image".
func multipartForm(t *testing.T, fields map[string]string, imageFilename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if imageFilename != "" {
		part, err := writer.CreateFormFile("image", imageFilename)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func redirectLocation(t *testing.T, resp *http.Response) *url.URL {
	t.Helper()
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return loc
}

func TestListCharacters(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("List", mock.Anything).Return([]model.Character{
			{ID: "id-a", Name: "Anna"},
			{ID: "id-b", Name: "bob"},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := bodyString(t, resp)
		assert.Contains(t, body, "Anna")
		assert.Contains(t, body, `/characters/id-b`)
		assert.Less(t, strings.Index(body, "Anna"), strings.Index(body, "bob"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("flash message shown", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("List", mock.Anything).Return([]model.Character{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/?flash=Character+removed.&kind=info", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := bodyString(t, resp)
		assert.Contains(t, body, "Character removed.")
		assert.Contains(t, body, "flash-info")
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("List", mock.Anything).Return(nil, errors.New("io fail")).Once()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestNewCharacterForm(t *testing.T) {
	mockSvc := new(serviceMocks.MockCharacterService)
	app := newTestApp(t, mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/characters/new", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := bodyString(t, resp)
	// Blank form defaults: level 1, attributes at 10.
	assert.Contains(t, body, `name="level" value="1"`)
	assert.Contains(t, body, `name="attr_strength" value="10"`)
	assert.Contains(t, body, `action="/characters"`)
}

func TestCreateCharacter(t *testing.T) {
	t.Run("success redirects to detail view", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(ch *model.Character) bool {
			// Form codec ran: trimmed name, coerced attributes.
			return ch.Name == "Aranel" && ch.Attributes["strength"] == 15 && ch.Attributes["dexterity"] == 0
		}), (*service.ImageUpload)(nil)).
			Return(&model.Character{ID: "new-id", Name: "Aranel"}, nil).Once()

		body, ct := multipartForm(t, map[string]string{
			"name":          "  Aranel  ",
			"attr_strength": "15",
			"attr_dexterity": "abc",
		}, "")
		req := httptest.NewRequest(http.MethodPost, "/characters", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		loc := redirectLocation(t, resp)
		assert.Equal(t, "/characters/new-id", loc.Path)
		assert.Equal(t, "success", loc.Query().Get("kind"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("image upload is passed through", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(img *service.ImageUpload) bool {
			return img != nil && img.Filename == "portrait.png"
		})).Return(&model.Character{ID: "new-id"}, nil).Once()

		body, ct := multipartForm(t, map[string]string{"name": "Aranel"}, "portrait.png")
		req := httptest.NewRequest(http.MethodPost, "/characters", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing name redirects back to blank form", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, service.ErrNameRequired).Once()

		body, ct := multipartForm(t, map[string]string{"name": "   "}, "")
		req := httptest.NewRequest(http.MethodPost, "/characters", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		loc := redirectLocation(t, resp)
		assert.Equal(t, "/characters/new", loc.Path)
		assert.Equal(t, "error", loc.Query().Get("kind"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid image format still lands on detail view with warning", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(&model.Character{ID: "new-id", Name: "Aranel"}, service.ErrInvalidImageFormat).Once()

		body, ct := multipartForm(t, map[string]string{"name": "Aranel"}, "portrait.exe")
		req := httptest.NewRequest(http.MethodPost, "/characters", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		loc := redirectLocation(t, resp)
		assert.Equal(t, "/characters/new-id", loc.Path)
		assert.Equal(t, "warning", loc.Query().Get("kind"))
		mockSvc.AssertExpectations(t)
	})
}

func TestShowCharacter(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		ch := model.NewBlankCharacter()
		ch.ID = "char-1"
		ch.Name = "Aranel"
		ch.Notes = "keeps a raven\nowes the guild 50gp"
		mockSvc.On("Get", mock.Anything, "char-1").Return(ch, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/characters/char-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := bodyString(t, resp)
		assert.Contains(t, body, "Aranel")
		// Multi-line fields render with line breaks preserved.
		assert.Contains(t, body, "keeps a raven<br>owes the guild 50gp")
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Get", mock.Anything, "missing").Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/characters/missing", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestEditCharacterForm(t *testing.T) {
	t.Run("pre-filled form", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		ch := model.NewBlankCharacter()
		ch.ID = "char-1"
		ch.Name = "Aranel"
		mockSvc.On("Get", mock.Anything, "char-1").Return(ch, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/characters/char-1/edit", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := bodyString(t, resp)
		assert.Contains(t, body, `value="Aranel"`)
		assert.Contains(t, body, `action="/characters/char-1"`)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Get", mock.Anything, "missing").Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/characters/missing/edit", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateCharacter(t *testing.T) {
	t.Run("success redirects to detail view", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Update", mock.Anything, "char-1", mock.Anything, mock.Anything).
			Return(&model.Character{ID: "char-1", Name: "Aranel"}, nil).Once()

		body, ct := multipartForm(t, map[string]string{"name": "Aranel"}, "")
		req := httptest.NewRequest(http.MethodPost, "/characters/char-1", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		loc := redirectLocation(t, resp)
		assert.Equal(t, "/characters/char-1", loc.Path)
		assert.Equal(t, "success", loc.Query().Get("kind"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing name redirects back to edit form", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Update", mock.Anything, "char-1", mock.Anything, mock.Anything).
			Return(nil, service.ErrNameRequired).Once()

		body, ct := multipartForm(t, map[string]string{"name": ""}, "")
		req := httptest.NewRequest(http.MethodPost, "/characters/char-1", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		loc := redirectLocation(t, resp)
		assert.Equal(t, "/characters/char-1/edit", loc.Path)
		assert.Equal(t, "error", loc.Query().Get("kind"))
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Update", mock.Anything, "missing", mock.Anything, mock.Anything).
			Return(nil, service.ErrNotFound).Once()

		body, ct := multipartForm(t, map[string]string{"name": "Aranel"}, "")
		req := httptest.NewRequest(http.MethodPost, "/characters/missing", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteCharacter(t *testing.T) {
	t.Run("success redirects to list", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Delete", mock.Anything, "char-1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/characters/char-1/delete", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		loc := redirectLocation(t, resp)
		assert.Equal(t, "/", loc.Path)
		assert.Equal(t, "info", loc.Query().Get("kind"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Delete", mock.Anything, "missing").Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPost, "/characters/missing/delete", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServePortrait(t *testing.T) {
	t.Run("streams stored portrait", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Portrait", mock.Anything, "char-1.png").
			Return(io.NopCloser(strings.NewReader("png-bytes")), storage.ObjectInfo{
				Key:         "char-1.png",
				Size:        9,
				ContentType: "image/png",
			}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/uploads/char-1.png", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		assert.Equal(t, "png-bytes", bodyString(t, resp))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCharacterService)
		app := newTestApp(t, mockSvc)

		mockSvc.On("Portrait", mock.Anything, "missing.png").
			Return(nil, storage.ObjectInfo{}, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRouting(t *testing.T) {
	mockSvc := new(serviceMocks.MockCharacterService)
	app := newTestApp(t, mockSvc)

	t.Run("unknown route renders error page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, bodyString(t, resp), "character not found")
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/characters/new", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
