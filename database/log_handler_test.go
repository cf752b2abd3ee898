package database

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogHandlerPersistsRecords(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(filepath.Join(t.TempDir(), "log_test.db"), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, InitSchema(ctx, db))

	logger := slog.New(NewLogHandler(db, slog.NewJSONHandler(io.Discard, nil)))
	logger.Info("team created", slog.Int("team_id", 7))
	logger.Warn("command failed")

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM logs`).Scan(&count))
	assert.Equal(t, 2, count)

	var level, message, loggerName string
	require.NoError(t, db.QueryRow(
		`SELECT level, message, logger_name FROM logs ORDER BY log_id LIMIT 1`).
		Scan(&level, &message, &loggerName))
	assert.Equal(t, "INFO", level)
	assert.Equal(t, "scrimbot", loggerName)
	assert.Contains(t, message, "team created")
	assert.Contains(t, message, "team_id=7")
}

func TestLogHandlerRecordsSurviveReset(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(filepath.Join(t.TempDir(), "log_reset_test.db"), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, InitSchema(ctx, db))

	logger := slog.New(NewLogHandler(db, slog.NewJSONHandler(io.Discard, nil)))
	logger.Info("before reset")

	_, err = NewEngine(db, nil).DropAllTables(ctx)
	require.NoError(t, err)
	require.NoError(t, InitSchema(ctx, db))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM logs`).Scan(&count))
	assert.Equal(t, 1, count)
}
