package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/amqp"
	"spendtrack/internal/core"
	"spendtrack/internal/log"
	"spendtrack/internal/storage"
)

// BreachNotifier publishes limit-breach notifications. A nil notifier
// disables publishing without changing any other behavior.
type BreachNotifier interface {
	PublishLimitBreach(ctx context.Context, msg *amqp.LimitBreachMessage) error
}

// Tracker orchestrates the exposed operations: evaluate-then-persist for
// expenses, limit upserts and the aggregate report queries. Each call is a
// short-lived transaction against the store; no state is held across calls.
type Tracker struct {
	store     *storage.SQLiteRepository
	evaluator *LimitEvaluator
	notifier  BreachNotifier
	clock     func() time.Time
	logger    *log.Logger
}

func NewTracker(store *storage.SQLiteRepository, notifier BreachNotifier, logger *log.Logger) *Tracker {
	return &Tracker{
		store:     store,
		evaluator: NewLimitEvaluator(store, store),
		notifier:  notifier,
		clock:     time.Now,
		logger:    logger.WithComponent(log.ComponentTracker),
	}
}

// WithClock replaces the time source. Reserved for tests that need
// deterministic window boundaries.
func (t *Tracker) WithClock(clock func() time.Time) *Tracker {
	t.clock = clock
	return t
}

// AddExpense evaluates the prospective expense against its category limit,
// persists it regardless of the verdict, and returns a confirmation string
// embedding the verdict message. The evaluation is advisory only; a breach
// is reported, never enforced.
func (t *Tracker) AddExpense(ctx context.Context, category string, amount decimal.Decimal, notes, currency string) (string, error) {
	if currency == "" {
		currency = core.DefaultCurrency
	}

	e := core.Expense{
		Category: category,
		Amount:   amount,
		Notes:    notes,
		Currency: currency,
	}
	if err := e.Validate(); err != nil {
		return "", err
	}

	now := t.clock()

	verdict, err := t.evaluator.Evaluate(ctx, category, amount, currency, now)
	if err != nil {
		return "", fmt.Errorf("evaluate limit: %w", err)
	}

	saved, err := t.store.InsertExpense(ctx, e, now)
	if err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}

	if !verdict.WithinLimit {
		t.notifyBreach(ctx, saved, verdict)
	}

	result := fmt.Sprintf("Expense added: %s - %s %s (%s)", category, amount, currency, notes)
	if verdict.WithinLimit {
		result += "\n✅ " + verdict.Message
	} else {
		result += "\n⚠️ " + verdict.Message
	}
	return result, nil
}

// SetCategoryLimit stores a limit policy, fully replacing any previous
// policy for the same (category, currency) pair.
func (t *Tracker) SetCategoryLimit(ctx context.Context, category string, limitAmount decimal.Decimal, limitType, currency string) (string, error) {
	if currency == "" {
		currency = core.DefaultCurrency
	}

	lt, err := core.ParseLimitType(limitType)
	if err != nil {
		return "", err
	}

	p := core.LimitPolicy{
		Category:    category,
		Currency:    currency,
		LimitAmount: limitAmount,
		LimitType:   lt,
	}
	if err := p.Validate(); err != nil {
		return "", err
	}

	if err := t.store.UpsertLimit(ctx, p, t.clock()); err != nil {
		return "", fmt.Errorf("set limit: %w", err)
	}

	return fmt.Sprintf("Limit set for %s: %s %s (%s)", category, limitAmount, currency, lt), nil
}

// ListCategoryLimits returns every configured policy, category ascending.
func (t *Tracker) ListCategoryLimits(ctx context.Context) ([]core.LimitPolicy, error) {
	return t.store.ListLimits(ctx)
}

// TotalExpenses sums all spend whose created_at date falls between two
// calendar dates, inclusive on both ends.
func (t *Tracker) TotalExpenses(ctx context.Context, startDate, endDate string) (decimal.Decimal, error) {
	start, err := core.ParseDate(startDate)
	if err != nil {
		return decimal.Zero, err
	}
	end, err := core.ParseDate(endDate)
	if err != nil {
		return decimal.Zero, err
	}

	return t.store.SumInDateRange(ctx,
		start.Format(core.DateLayout), end.Format(core.DateLayout))
}

// AverageTransaction returns the mean amount across the whole ledger, zero
// when the ledger is empty.
func (t *Tracker) AverageTransaction(ctx context.Context) (decimal.Decimal, error) {
	return t.store.AverageAmount(ctx)
}

// TopCategories returns the n highest-spending categories.
func (t *Tracker) TopCategories(ctx context.Context, n int) ([]core.CategoryTotal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive (got %d)", core.ErrValidation, n)
	}
	return t.store.TopCategories(ctx, n)
}

// ListExpenses returns the full ledger, newest first.
func (t *Tracker) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return t.store.ListExpenses(ctx)
}

// AddTableColumn appends a column to one of the persisted tables. A column
// that already exists is an informational no-op, not a failure.
func (t *Tracker) AddTableColumn(ctx context.Context, table, column, columnType string, defaultValue *string, required bool) (string, error) {
	err := t.store.AddColumn(ctx, table, column, columnType, defaultValue, required)
	if errors.Is(err, core.ErrConflict) {
		return fmt.Sprintf("Column '%s' already exists in table '%s'", column, table), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Column '%s' added to table '%s' successfully", column, table), nil
}

func (t *Tracker) notifyBreach(ctx context.Context, e core.Expense, verdict core.Verdict) {
	if t.notifier == nil {
		return
	}

	msg := &amqp.LimitBreachMessage{
		Category:  e.Category,
		Currency:  e.Currency,
		Amount:    e.Amount.String(),
		LimitType: string(verdict.LimitType),
		Message:   verdict.Message,
		Timestamp: t.clock(),
	}
	if verdict.LimitAmount != nil {
		msg.LimitAmount = verdict.LimitAmount.String()
	}
	if verdict.CurrentTotalAfter != nil {
		msg.Total = verdict.CurrentTotalAfter.String()
	}

	if err := t.notifier.PublishLimitBreach(ctx, msg); err != nil {
		// Notification is best effort; the expense is already saved.
		t.logger.ErrorContext(ctx, "Failed to publish breach notification",
			"category", e.Category, "error", err)
	}
}

// Close releases the underlying store.
func (t *Tracker) Close() error {
	if t.store != nil {
		return t.store.Close()
	}
	return nil
}
