package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"charkeep/internal/model"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (fsjson, sqlite) inside this directory.

// CharacterRepository defines persistence for character records.
// It holds no business logic, only load/save/delete operations keyed by id.
type CharacterRepository interface {
	// Load returns the record for id with the ID field injected.
	// A missing record surfaces the backend's native not-found error
	// (fs.ErrNotExist or sql.ErrNoRows); the service layer translates it.
	Load(ctx context.Context, id string) (*model.Character, error)

	// LoadAll returns every record, sorted ascending by case-insensitive
	// name. An empty store yields an empty slice, not an error.
	LoadAll(ctx context.Context) ([]model.Character, error)

	// Save writes the record under id, fully overwriting prior content.
	// No locking: concurrent writers to one id are last-write-wins.
	Save(ctx context.Context, id string, ch *model.Character) error

	// Delete removes the record for id. Missing records are not an error.
	Delete(ctx context.Context, id string) error
}

// SortByName orders records ascending by lowercased name. Order among
// equal names is whatever the backend iteration produced.
func SortByName(chars []model.Character) {
	sort.SliceStable(chars, func(i, j int) bool {
		return strings.ToLower(chars[i].Name) < strings.ToLower(chars[j].Name)
	})
}

// EncodeRecord serializes a character as the canonical stored document:
// two-space indented JSON with HTML escaping off so non-ASCII text stays
// readable. Both backends store this exact byte form.
func EncodeRecord(ch *model.Character) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ch); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeRecord parses a stored document and injects the id.
func DecodeRecord(b []byte, id string) (*model.Character, error) {
	var ch model.Character
	if err := json.Unmarshal(b, &ch); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	ch.ID = id
	return &ch, nil
}
