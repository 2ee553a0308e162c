package fsjson

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charkeep/internal/model"
	"charkeep/internal/repository"
)

// CharacterFS is a filesystem implementation of repository.CharacterRepository.
// Each record lives in its own <id>.json file under the data directory;
// the id is the filename stem and is never written into the document.
type CharacterFS struct {
	dir string
}

// NewCharacterFS creates the data directory if needed and returns the store.
func NewCharacterFS(dir string) (*CharacterFS, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &CharacterFS{dir: dir}, nil
}

var _ repository.CharacterRepository = (*CharacterFS)(nil)

func (r *CharacterFS) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}

// Load reads <id>.json and injects the id. A missing file surfaces as
// fs.ErrNotExist from os.ReadFile.
func (r *CharacterFS) Load(ctx context.Context, id string) (*model.Character, error) {
	b, err := os.ReadFile(r.path(id))
	if err != nil {
		return nil, err
	}
	return repository.DecodeRecord(b, id)
}

// LoadAll reads every *.json file in the directory and sorts by name.
func (r *CharacterFS) LoadAll(ctx context.Context) ([]model.Character, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}

	chars := make([]model.Character, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		ch, err := r.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		chars = append(chars, *ch)
	}

	repository.SortByName(chars)
	return chars, nil
}

// Save writes the record document, overwriting any prior content for the id.
func (r *CharacterFS) Save(ctx context.Context, id string, ch *model.Character) error {
	b, err := repository.EncodeRecord(ch)
	if err != nil {
		return err
	}
	return os.WriteFile(r.path(id), b, 0o644)
}

// Delete removes the record file. A missing file is not an error.
func (r *CharacterFS) Delete(ctx context.Context, id string) error {
	err := os.Remove(r.path(id))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
