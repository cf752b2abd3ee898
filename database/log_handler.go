package database

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// LogHandler дублирует записи журнала в таблицу logs поверх основного
// обработчика. Таблица переживает сброс базы, поэтому история остаётся
// доступной после data reset. Ошибка вставки не прерывает логирование.
type LogHandler struct {
	db    *sql.DB
	inner slog.Handler
}

func NewLogHandler(db *sql.DB, inner slog.Handler) *LogHandler {
	return &LogHandler{db: db, inner: inner}
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *LogHandler) Handle(ctx context.Context, record slog.Record) error {
	var (
		module   string
		function string
		line     int
	)
	if record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		frame, _ := frames.Next()
		function = frame.Function
		module = filepath.Base(frame.File)
		line = frame.Line
	}

	var b strings.Builder
	b.WriteString(record.Message)
	record.Attrs(func(attr slog.Attr) bool {
		b.WriteByte(' ')
		b.WriteString(attr.String())
		return true
	})

	_, _ = h.db.ExecContext(ctx,
		`INSERT INTO logs (level, logger_name, message, module, function, line_number)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.Level.String(), "scrimbot", b.String(), module, function, line)

	return h.inner.Handle(ctx, record)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{db: h.db, inner: h.inner.WithAttrs(attrs)}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{db: h.db, inner: h.inner.WithGroup(name)}
}
