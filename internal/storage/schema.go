package storage

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"spendtrack/internal/core"
)

// identifierPattern restricts table and column names to plain SQL
// identifiers. Identifiers are interpolated into the ALTER statement, so
// anything outside this set is rejected before any SQL is built.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// columnTypes is the allowlist of SQLite column types accepted for new
// columns.
var columnTypes = map[string]bool{
	"TEXT":    true,
	"INTEGER": true,
	"REAL":    true,
	"NUMERIC": true,
	"BLOB":    true,
}

// alterableTables names the tables schema evolution may touch. Additive
// changes only; columns are never removed or retyped.
var alterableTables = map[string]bool{
	"expenses":        true,
	"category_limits": true,
}

// AddColumn appends a column to one of the tracker's tables. A column that
// already exists is reported with core.ErrConflict so callers can treat it
// as an informational no-op rather than a failure.
func (r *SQLiteRepository) AddColumn(ctx context.Context, table, column, columnType string, defaultValue *string, required bool) error {
	if !identifierPattern.MatchString(table) {
		return fmt.Errorf("%w: invalid table name %q", core.ErrValidation, table)
	}
	if !identifierPattern.MatchString(column) {
		return fmt.Errorf("%w: invalid column name %q", core.ErrValidation, column)
	}
	colType := strings.ToUpper(strings.TrimSpace(columnType))
	if !columnTypes[colType] {
		return fmt.Errorf("%w: unsupported column type %q", core.ErrValidation, columnType)
	}
	if !alterableTables[table] {
		return fmt.Errorf("%w: table %q does not exist", core.ErrNotFound, table)
	}
	if required && defaultValue == nil {
		return fmt.Errorf("%w: a required column needs a default value", core.ErrValidation)
	}

	exists, err := r.columnExists(ctx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: column %q already exists in table %q", core.ErrConflict, column, table)
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, colType)
	if defaultValue != nil {
		// Bound parameters are not allowed in DDL; single quotes in the
		// default are doubled instead.
		stmt += fmt.Sprintf(" DEFAULT '%s'", strings.ReplaceAll(*defaultValue, "'", "''"))
	}
	if required {
		stmt += " NOT NULL"
	}

	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("alter table: %w", err)
	}

	slog.InfoContext(ctx, "Column added",
		"table", table,
		"column", column,
		"type", colType,
		"required", required)

	return nil
}

func (r *SQLiteRepository) columnExists(ctx context.Context, table, column string) (bool, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("read table info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal any
			pk         int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return false, fmt.Errorf("scan table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate table info: %w", err)
	}
	return false, nil
}
