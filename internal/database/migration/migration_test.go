package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sentinelQuery = `SELECT COUNT\(\*\) FROM sqlite_master WHERE type = 'table' AND name = 'characters'`

func TestEnsureMigrated(t *testing.T) {
	t.Run("skips when schema already exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(sentinelQuery).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err = EnsureMigrated(context.Background(), db, "data/charkeep.db")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs steps when schema is missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(sentinelQuery).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS characters`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = EnsureMigrated(context.Background(), db, "data/charkeep.db")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sentinel query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(sentinelQuery).
			WillReturnError(errors.New("db closed"))

		err = EnsureMigrated(context.Background(), db, "data/charkeep.db")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check sentinel table")
	})

	t.Run("step error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(sentinelQuery).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS characters`).
			WillReturnError(errors.New("disk I/O error"))

		err = EnsureMigrated(context.Background(), db, "data/charkeep.db")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "migration step create_table_characters failed")
	})
}
