package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// timeFormat — единый формат хранения времени в TEXT-колонках.
const timeFormat = time.RFC3339Nano

// ErrNoRowsAffected — обновление или удаление неожиданно не затронуло ни
// одной строки: состояние вызывающего разошлось с базой.
var ErrNoRowsAffected = errors.New("no rows affected")

// SQLExecutor позволяет методам репозитория работать как с *sql.DB, так и с
// *sql.Tx, когда несколько операций должны выполняться в одной транзакции.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
