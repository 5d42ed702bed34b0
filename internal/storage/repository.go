package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable store for both tables: the expense ledger
// and the category limit registry. Amounts are persisted as decimal strings
// and aggregated in Go, so SQLite never does float arithmetic on money.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertExpense persists a new expense, assigning its id and stamping
// created_at = updated_at = now. created_at is immutable afterwards.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense, now time.Time) (core.Expense, error) {
	stamp := now.Format(core.TimestampLayout)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (category, amount, notes, currency, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Category, e.Amount.String(), e.Notes, e.Currency, stamp, stamp)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}

	e.ID = id
	e.CreatedAt = now.Truncate(time.Second)
	e.UpdatedAt = e.CreatedAt

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"category", e.Category,
		"amount", e.Amount.String(),
		"currency", e.Currency)

	return e, nil
}

// SumInWindow totals expense amounts for a (category, currency) pair whose
// created_at falls in [start, end). An expense stamped exactly at start
// counts; one stamped exactly at end does not. Returns zero when no rows
// match, never an absent value.
func (r *SQLiteRepository) SumInWindow(ctx context.Context, category, currency string, start, end time.Time) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount FROM expenses
		 WHERE category = ? AND currency = ? AND created_at >= ? AND created_at < ?`,
		category, currency,
		start.Format(core.TimestampLayout), end.Format(core.TimestampLayout))
	if err != nil {
		return decimal.Zero, fmt.Errorf("query window: %w", err)
	}
	defer rows.Close()

	return sumAmountRows(rows)
}

// SumInDateRange totals all expense amounts whose created_at date falls
// between startDate and endDate, inclusive on both calendar-date bounds.
// Dates must already be validated YYYY-MM-DD strings.
func (r *SQLiteRepository) SumInDateRange(ctx context.Context, startDate, endDate string) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount FROM expenses WHERE date(created_at) BETWEEN ? AND ?`,
		startDate, endDate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query date range: %w", err)
	}
	defer rows.Close()

	return sumAmountRows(rows)
}

// AverageAmount returns the mean expense amount across the whole ledger,
// zero when the ledger is empty.
func (r *SQLiteRepository) AverageAmount(ctx context.Context) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT amount FROM expenses`)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query amounts: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	count := int64(0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse stored amount %q: %w", raw, err)
		}
		total = total.Add(amount)
		count++
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("iterate amounts: %w", err)
	}

	if count == 0 {
		return decimal.Zero, nil
	}
	return total.Div(decimal.NewFromInt(count)), nil
}

// TopCategories returns the n categories with the highest total spend,
// descending by total. Ties are broken by category name ascending so the
// order is deterministic.
func (r *SQLiteRepository) TopCategories(ctx context.Context, n int) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, amount FROM expenses`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var category, raw string
		if err := rows.Scan(&category, &raw); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", raw, err)
		}
		totals[category] = totals[category].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	ranked := make([]core.CategoryTotal, 0, len(totals))
	for category, total := range totals {
		ranked = append(ranked, core.CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Total.Equal(ranked[j].Total) {
			return ranked[i].Total.GreaterThan(ranked[j].Total)
		}
		return ranked[i].Category < ranked[j].Category
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// ListExpenses returns every expense, newest first. Rows created in the same
// second are ordered by id descending so the order stays stable.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, amount, notes, currency, created_at, updated_at
		 FROM expenses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// UpsertLimit stores a limit policy, fully replacing any previous policy for
// the same (category, currency) pair including its type and amount.
func (r *SQLiteRepository) UpsertLimit(ctx context.Context, p core.LimitPolicy, now time.Time) error {
	stamp := now.Format(core.TimestampLayout)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO category_limits (category, currency, limit_amount, limit_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (category, currency) DO UPDATE SET
		   limit_amount = excluded.limit_amount,
		   limit_type = excluded.limit_type,
		   updated_at = excluded.updated_at`,
		p.Category, p.Currency, p.LimitAmount.String(), string(p.LimitType), stamp, stamp)
	if err != nil {
		return fmt.Errorf("upsert limit: %w", err)
	}

	slog.InfoContext(ctx, "Limit policy stored",
		"category", p.Category,
		"currency", p.Currency,
		"limit_amount", p.LimitAmount.String(),
		"limit_type", string(p.LimitType))

	return nil
}

// GetLimit returns the policy for a (category, currency) pair, or
// core.ErrNoLimit when none is configured.
func (r *SQLiteRepository) GetLimit(ctx context.Context, category, currency string) (core.LimitPolicy, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT category, currency, limit_amount, limit_type, created_at, updated_at
		 FROM category_limits WHERE category = ? AND currency = ?`,
		category, currency)

	p, err := scanLimitPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.LimitPolicy{}, core.ErrNoLimit
	}
	if err != nil {
		return core.LimitPolicy{}, err
	}
	return p, nil
}

// ListLimits returns every limit policy ordered by category ascending,
// then currency ascending.
func (r *SQLiteRepository) ListLimits(ctx context.Context) ([]core.LimitPolicy, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, currency, limit_amount, limit_type, created_at, updated_at
		 FROM category_limits ORDER BY category ASC, currency ASC`)
	if err != nil {
		return nil, fmt.Errorf("query limits: %w", err)
	}
	defer rows.Close()

	var policies []core.LimitPolicy
	for rows.Next() {
		p, err := scanLimitPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate limits: %w", err)
	}
	return policies, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e                    core.Expense
		raw                  string
		createdAt, updatedAt string
	)
	if err := s.Scan(&e.ID, &e.Category, &raw, &e.Notes, &e.Currency, &createdAt, &updatedAt); err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse stored amount %q: %w", raw, err)
	}
	e.Amount = amount

	if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return core.Expense{}, err
	}
	if e.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func scanLimitPolicy(s scanner) (core.LimitPolicy, error) {
	var (
		p                    core.LimitPolicy
		raw, limitType       string
		createdAt, updatedAt string
	)
	if err := s.Scan(&p.Category, &p.Currency, &raw, &limitType, &createdAt, &updatedAt); err != nil {
		return core.LimitPolicy{}, err
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return core.LimitPolicy{}, fmt.Errorf("parse stored limit %q: %w", raw, err)
	}
	p.LimitAmount = amount
	p.LimitType = core.LimitType(limitType)

	if p.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return core.LimitPolicy{}, err
	}
	if p.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return core.LimitPolicy{}, err
	}
	return p, nil
}

func sumAmountRows(rows *sql.Rows) (decimal.Decimal, error) {
	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse stored amount %q: %w", raw, err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("iterate amounts: %w", err)
	}
	return total, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(core.TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}
