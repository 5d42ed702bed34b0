package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
)

// LimitReader looks up the limit policy for a (category, currency) pair.
type LimitReader interface {
	GetLimit(ctx context.Context, category, currency string) (core.LimitPolicy, error)
}

// WindowSummer totals spend for a (category, currency) pair over a
// half-open [start, end) window.
type WindowSummer interface {
	SumInWindow(ctx context.Context, category, currency string, start, end time.Time) (decimal.Decimal, error)
}

// LimitEvaluator decides whether a prospective expense stays within the
// configured limit for its category and currency. The verdict is advisory:
// nothing here blocks a write, and Evaluate never mutates store state.
type LimitEvaluator struct {
	limits LimitReader
	ledger WindowSummer
}

func NewLimitEvaluator(limits LimitReader, ledger WindowSummer) *LimitEvaluator {
	return &LimitEvaluator{limits: limits, ledger: ledger}
}

// Evaluate checks a prospective expense against the spend already
// accumulated in the current window. The reference instant is injected so
// boundary conditions are testable deterministically.
func (ev *LimitEvaluator) Evaluate(ctx context.Context, category string, amount decimal.Decimal, currency string, ref time.Time) (core.Verdict, error) {
	policy, err := ev.limits.GetLimit(ctx, category, currency)
	if errors.Is(err, core.ErrNoLimit) {
		return core.Verdict{
			WithinLimit: true,
			Message:     "No limit set for this category",
		}, nil
	}
	if err != nil {
		return core.Verdict{}, fmt.Errorf("look up limit: %w", err)
	}

	start, end, err := core.ResolveWindow(policy.LimitType, ref)
	if err != nil {
		return core.Verdict{}, err
	}

	currentTotal, err := ev.ledger.SumInWindow(ctx, category, currency, start, end)
	if err != nil {
		return core.Verdict{}, fmt.Errorf("sum window spend: %w", err)
	}

	projected := currentTotal.Add(amount)
	limit := policy.LimitAmount

	if projected.GreaterThan(limit) {
		return core.Verdict{
			WithinLimit: false,
			Message: fmt.Sprintf("WARNING: Adding %s would exceed the %s limit of %s for %s. Current total: %s",
				amount, policy.LimitType, limit, category, currentTotal),
			CurrentTotalAfter: &projected,
			LimitAmount:       &limit,
			LimitType:         policy.LimitType,
		}, nil
	}

	return core.Verdict{
		WithinLimit: true,
		Message: fmt.Sprintf("OK: Current %s total for %s: %s/%s",
			policy.LimitType, category, projected, limit),
		CurrentTotalAfter: &projected,
		LimitAmount:       &limit,
		LimitType:         policy.LimitType,
	}, nil
}
