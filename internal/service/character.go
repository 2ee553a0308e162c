package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"charkeep/internal/model"
	"charkeep/internal/repository"
	"charkeep/internal/storage"
)

var (
	ErrIDRequired   = errors.New("id is required")
	ErrNotFound     = errors.New("character not found")
	ErrNameRequired = errors.New("character name is required")

	// ErrInvalidImageFormat is recoverable: the record still saves and the
	// previous portrait (if any) is left untouched. Create and Update
	// return it alongside the saved character so callers can warn the user.
	ErrInvalidImageFormat = errors.New("unsupported image format")
)

// ImageUpload carries one submitted portrait file. A nil *ImageUpload (or
// an empty Filename) means no file was submitted.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	Size        int64
	ContentType string
}

// CharacterService defines the use cases for managing character sheets.
type CharacterService interface {
	// List returns all characters sorted by case-insensitive name.
	List(ctx context.Context) ([]model.Character, error)

	// Get returns a single character by id.
	Get(ctx context.Context, id string) (*model.Character, error)

	// Create assigns a fresh id, stores the optional portrait, and persists
	// the record. The name must be non-empty; nothing is written otherwise.
	// A disallowed portrait extension returns the saved character together
	// with ErrInvalidImageFormat.
	Create(ctx context.Context, ch *model.Character, img *ImageUpload) (*model.Character, error)

	// Update overwrites the record for an existing id, replacing the
	// portrait (and removing the old file) when a new valid one is
	// uploaded. Same name and image-format semantics as Create.
	Update(ctx context.Context, id string, ch *model.Character, img *ImageUpload) (*model.Character, error)

	// Delete removes both the portrait file and the record.
	Delete(ctx context.Context, id string) error

	// Portrait streams a stored portrait file by its bare filename.
	Portrait(ctx context.Context, filename string) (io.ReadCloser, storage.ObjectInfo, error)
}

// characterService is a concrete implementation of CharacterService.
type characterService struct {
	store       storage.Storage
	repo        repository.CharacterRepository
	allowedExts []string
}

// NewCharacterService constructs a new CharacterService. allowedExts is
// the lowercase portrait extension allow-list.
func NewCharacterService(store storage.Storage, repo repository.CharacterRepository, allowedExts []string) CharacterService {
	return &characterService{store: store, repo: repo, allowedExts: allowedExts}
}

func (s *characterService) List(ctx context.Context) ([]model.Character, error) {
	return s.repo.LoadAll(ctx)
}

func (s *characterService) Get(ctx context.Context, id string) (*model.Character, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	ch, err := s.repo.Load(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ch, nil
}

func (s *characterService) Create(ctx context.Context, ch *model.Character, img *ImageUpload) (*model.Character, error) {
	// Name validation runs strictly before any portrait write so a
	// rejected create never leaves an orphan image behind.
	if ch.Name == "" {
		return nil, ErrNameRequired
	}

	id := uuid.NewString()

	ref, imgErr := s.savePortrait(ctx, id, img, "")
	if imgErr != nil && !errors.Is(imgErr, ErrInvalidImageFormat) {
		return nil, imgErr
	}
	ch.Image = ref

	if err := s.repo.Save(ctx, id, ch); err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}
	ch.ID = id
	return ch, imgErr
}

func (s *characterService) Update(ctx context.Context, id string, ch *model.Character, img *ImageUpload) (*model.Character, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch.Name == "" {
		return nil, ErrNameRequired
	}

	ref, imgErr := s.savePortrait(ctx, id, img, existing.Image)
	if imgErr != nil && !errors.Is(imgErr, ErrInvalidImageFormat) {
		return nil, imgErr
	}
	ch.Image = ref

	if err := s.repo.Save(ctx, id, ch); err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}
	ch.ID = id
	return ch, imgErr
}

// Delete removes the portrait first, then the record, mirroring the write
// order's inverse. There is no transactional coupling between the two.
func (s *characterService) Delete(ctx context.Context, id string) error {
	ch, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if ch.Image != "" {
		if err := s.store.Delete(ctx, path.Base(ch.Image)); err != nil {
			return fmt.Errorf("delete portrait: %w", err)
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *characterService) Portrait(ctx context.Context, filename string) (io.ReadCloser, storage.ObjectInfo, error) {
	rc, info, err := s.store.Get(ctx, filename)
	if err != nil {
		if isNotFound(err) {
			return nil, storage.ObjectInfo{}, ErrNotFound
		}
		return nil, storage.ObjectInfo{}, err
	}
	return rc, info, nil
}

// savePortrait persists an uploaded portrait as "<id>.<ext>" and returns
// the new image reference. With no upload it returns the previous
// reference unchanged. A disallowed extension returns the previous
// reference plus ErrInvalidImageFormat. After a successful write, a
// previous file with a differing name is removed.
func (s *characterService) savePortrait(ctx context.Context, id string, img *ImageUpload, previous string) (string, error) {
	if img == nil || img.Filename == "" {
		return previous, nil
	}

	ext, ok := s.allowedExt(img.Filename)
	if !ok {
		return previous, ErrInvalidImageFormat
	}

	key := id + "." + ext
	if _, err := s.store.Put(ctx, key, img.Reader, storage.PutObjectOptions{
		Size:        img.Size,
		ContentType: img.ContentType,
	}); err != nil {
		return "", fmt.Errorf("store portrait: %w", err)
	}

	ref := "uploads/" + key
	if previous != "" && previous != ref {
		if err := s.store.Delete(ctx, path.Base(previous)); err != nil {
			return "", fmt.Errorf("remove previous portrait: %w", err)
		}
	}
	return ref, nil
}

// allowedExt sanitizes the submitted filename and checks its extension
// against the allow-list, case-insensitively.
func (s *characterService) allowedExt(filename string) (string, bool) {
	name := sanitizeFilename(filename)
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return "", false
	}
	ext := strings.ToLower(name[i+1:])
	for _, allowed := range s.allowedExts {
		if ext == strings.ToLower(allowed) {
			return ext, true
		}
	}
	return "", false
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// sanitizeFilename strips directory components and collapses anything
// outside [A-Za-z0-9_.-] to underscores.
func sanitizeFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "._")
}

// isNotFound recognizes the native not-found errors of every backend:
// fs.ErrNotExist (flat files and local portraits), sql.ErrNoRows (sqlite
// records), and a 404 ErrorResponse from S3-compatible portrait storage.
func isNotFound(err error) bool {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var er minio.ErrorResponse
	return errors.As(err, &er) && er.StatusCode == http.StatusNotFound
}
