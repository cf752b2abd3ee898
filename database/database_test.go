package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectAppliesPragmas(t *testing.T) {
	db, err := Connect(filepath.Join(t.TempDir(), "connect_test.db"), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var foreignKeys int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)

	var journalMode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)
}

func TestDanglingReferenceIsRejected(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(filepath.Join(t.TempDir(), "fk_test.db"), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, InitSchema(ctx, db))

	_, err = db.ExecContext(ctx,
		`INSERT INTO maps (name, mode, game_id) VALUES ('Aquarius', 'slayer', 9999)`)
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
	assert.True(t, IsConstraintViolation(err))
	assert.False(t, IsUniqueViolation(err))
}
