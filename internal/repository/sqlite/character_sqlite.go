package sqlite

import (
	"context"
	"database/sql"

	"charkeep/internal/model"
	"charkeep/internal/repository"
)

// CharacterSQLite is an embedded-database implementation of
// repository.CharacterRepository. Each record is one row keyed by id,
// holding the same JSON document the filesystem backend writes to disk.
type CharacterSQLite struct {
	db *sql.DB
}

// NewCharacterSQLite creates a new CharacterSQLite repository.
func NewCharacterSQLite(db *sql.DB) *CharacterSQLite {
	return &CharacterSQLite{db: db}
}

var _ repository.CharacterRepository = (*CharacterSQLite)(nil)

// Load fetches a single record by id. A missing row surfaces sql.ErrNoRows.
func (r *CharacterSQLite) Load(ctx context.Context, id string) (*model.Character, error) {
	const q = `SELECT data FROM characters WHERE id = ?`
	var data []byte
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&data); err != nil {
		return nil, err
	}
	return repository.DecodeRecord(data, id)
}

// LoadAll returns every record sorted by case-insensitive name. Sorting
// happens in Go so both backends share the same collation.
func (r *CharacterSQLite) LoadAll(ctx context.Context) ([]model.Character, error) {
	const q = `SELECT id, data FROM characters`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chars := make([]model.Character, 0)
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		ch, err := repository.DecodeRecord(data, id)
		if err != nil {
			return nil, err
		}
		chars = append(chars, *ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	repository.SortByName(chars)
	return chars, nil
}

// Save upserts the record document for id; prior content is fully replaced.
func (r *CharacterSQLite) Save(ctx context.Context, id string, ch *model.Character) error {
	data, err := repository.EncodeRecord(ch)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO characters (id, data) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`
	_, err = r.db.ExecContext(ctx, q, id, data)
	return err
}

// Delete removes a record by id. It does not return an error if the row
// does not exist.
func (r *CharacterSQLite) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM characters WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
