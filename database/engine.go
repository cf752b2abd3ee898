package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// Column describes one column of a dynamically created table. Definition is
// the raw SQL type and constraints, e.g. "INTEGER PRIMARY KEY AUTOINCREMENT".
type Column struct {
	Name       string
	Definition string
}

// Engine builds and runs parameterized statements against the store. Table
// and column names pass through ValidateIdentifier before reaching statement
// text; every value is a bound parameter. Entity repositories use static SQL
// instead — the engine exists for the genuinely dynamic paths (admin tooling,
// database reset, table inspection).
type Engine struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewEngine(db *sql.DB, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{db: db, logger: logger}
}

// CreateTable создает таблицу. Идемпотентно (IF NOT EXISTS).
func (e *Engine) CreateTable(ctx context.Context, table string, columns []Column) error {
	validatedTable, err := ValidateIdentifier(table)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return fmt.Errorf("%w: table %q requires at least one column", ErrInvalidIdentifier, table)
	}

	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		validatedCol, err := ValidateIdentifier(col.Name)
		if err != nil {
			return err
		}
		defs = append(defs, validatedCol+" "+col.Definition)
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", validatedTable, strings.Join(defs, ", "))
	if _, err := e.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	e.logger.Debug("table created", slog.String("table", table))
	return nil
}

// Insert вставляет строку и возвращает её новый rowid.
func (e *Engine) Insert(ctx context.Context, table string, values map[string]any) (int64, error) {
	validatedTable, err := ValidateIdentifier(table)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: insert into %q requires at least one value", ErrInvalidIdentifier, table)
	}

	names := sortedKeys(values)
	cols := make([]string, 0, len(names))
	placeholders := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for _, name := range names {
		validatedCol, err := ValidateIdentifier(name)
		if err != nil {
			return 0, err
		}
		cols = append(cols, validatedCol)
		placeholders = append(placeholders, "?")
		args = append(args, values[name])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		validatedTable, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	result, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		if IsConstraintViolation(err) {
			return 0, fmt.Errorf("%w: insert into %s: %w", ErrConstraintViolation, table, err)
		}
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted row id: %w", err)
	}

	e.logger.Debug("row inserted", slog.String("table", table), slog.Int64("id", id))
	return id, nil
}

// Select возвращает строки таблицы. columns == nil означает все колонки;
// where — необязательное условие c '?' плейсхолдерами для args.
func (e *Engine) Select(ctx context.Context, table string, columns []string, where string, args ...any) ([]Row, error) {
	validatedTable, err := ValidateIdentifier(table)
	if err != nil {
		return nil, err
	}

	columnStr := "*"
	if len(columns) > 0 {
		validated := make([]string, 0, len(columns))
		for _, col := range columns {
			validatedCol, err := ValidateIdentifier(col)
			if err != nil {
				return nil, err
			}
			validated = append(validated, validatedCol)
		}
		columnStr = strings.Join(validated, ", ")
	}

	query := fmt.Sprintf("SELECT %s FROM %s", columnStr, validatedTable)
	if where != "" {
		query += " WHERE " + where
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	results := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(names))
		pointers := make([]any, len(names))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}

		row := make(Row, len(names))
		for i, name := range names {
			row[name] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// SelectOne возвращает одну строку или nil, если ничего не найдено.
func (e *Engine) SelectOne(ctx context.Context, table string, columns []string, where string, args ...any) (Row, error) {
	results, err := e.Select(ctx, table, columns, where, args...)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// Update обновляет строки и возвращает число затронутых.
func (e *Engine) Update(ctx context.Context, table string, values map[string]any, where string, args ...any) (int64, error) {
	validatedTable, err := ValidateIdentifier(table)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: update of %q requires at least one value", ErrInvalidIdentifier, table)
	}
	if where == "" {
		return 0, fmt.Errorf("update of %s requires a where clause", table)
	}

	names := sortedKeys(values)
	assignments := make([]string, 0, len(names))
	allArgs := make([]any, 0, len(names)+len(args))
	for _, name := range names {
		validatedCol, err := ValidateIdentifier(name)
		if err != nil {
			return 0, err
		}
		assignments = append(assignments, validatedCol+" = ?")
		allArgs = append(allArgs, values[name])
	}
	allArgs = append(allArgs, args...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", validatedTable, strings.Join(assignments, ", "), where)

	result, err := e.db.ExecContext(ctx, query, allArgs...)
	if err != nil {
		if IsConstraintViolation(err) {
			return 0, fmt.Errorf("%w: update of %s: %w", ErrConstraintViolation, table, err)
		}
		return 0, fmt.Errorf("failed to update %s: %w", table, err)
	}

	return result.RowsAffected()
}

// Delete удаляет строки и возвращает число затронутых.
func (e *Engine) Delete(ctx context.Context, table string, where string, args ...any) (int64, error) {
	validatedTable, err := ValidateIdentifier(table)
	if err != nil {
		return 0, err
	}
	if where == "" {
		return 0, fmt.Errorf("delete from %s requires a where clause", table)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", validatedTable, where)
	result, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	return result.RowsAffected()
}

// DropTable удаляет таблицу (IF EXISTS).
func (e *Engine) DropTable(ctx context.Context, table string) error {
	validatedTable, err := ValidateIdentifier(table)
	if err != nil {
		return err
	}

	if _, err := e.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+validatedTable); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}

	e.logger.Debug("table dropped", slog.String("table", table))
	return nil
}

// TableExists проверяет существование таблицы.
func (e *Engine) TableExists(ctx context.Context, table string) (bool, error) {
	var name string
	err := e.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return true, nil
}

// DropAllTables drops every user table except the logs table, which is kept
// so logging keeps working through a reset. Foreign keys are switched off
// for the duration to avoid dependency ordering issues.
func (e *Engine) DropAllTables(ctx context.Context) (int, error) {
	if _, err := e.db.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return 0, fmt.Errorf("failed to disable foreign keys: %w", err)
	}

	rows, err := e.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != 'logs'`)
	if err != nil {
		return 0, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	for _, table := range tables {
		if err := e.DropTable(ctx, table); err != nil {
			return 0, err
		}
	}

	if _, err := e.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return len(tables), fmt.Errorf("failed to re-enable foreign keys: %w", err)
	}

	e.logger.Info("tables dropped", slog.Int("count", len(tables)))
	return len(tables), nil
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
