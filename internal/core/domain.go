package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Daily   LimitType = "daily"
	Weekly  LimitType = "weekly"
	Monthly LimitType = "monthly"
)

// DefaultCurrency is applied when a caller omits the currency code.
// Currencies are opaque partition keys; amounts are never converted
// between them.
const DefaultCurrency = "USD"

const (
	// TimestampLayout is the storage format for created_at/updated_at,
	// second precision, local time.
	TimestampLayout = "2006-01-02 15:04:05"

	// DateLayout is the calendar-date format accepted by range queries.
	DateLayout = "2006-01-02"
)

type (
	// LimitType is the period over which a spending limit applies.
	LimitType string

	// Expense is a single recorded transaction. CreatedAt is set once at
	// insertion and is the only temporal key used by window queries.
	Expense struct {
		ID        int64
		Category  string
		Amount    decimal.Decimal
		Notes     string
		Currency  string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// LimitPolicy is the spending limit for one (category, currency) pair.
	// At most one policy exists per pair; setting a new one replaces the
	// previous policy entirely.
	LimitPolicy struct {
		Category    string
		Currency    string
		LimitAmount decimal.Decimal
		LimitType   LimitType
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// Verdict is the advisory result of a limit evaluation. It never blocks
	// a write; it travels as informational metadata on the confirmation.
	Verdict struct {
		WithinLimit       bool
		Message           string
		CurrentTotalAfter *decimal.Decimal
		LimitAmount       *decimal.Decimal

		// LimitType is the period of the policy that produced this verdict,
		// empty when no policy is configured.
		LimitType LimitType
	}

	// CategoryTotal is an amount aggregated by category name.
	CategoryTotal struct {
		Category string
		Total    decimal.Decimal
	}
)

// Error taxonomy. Every fault surfaced to a caller wraps one of these so
// the tool boundary can classify it without string matching.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// ErrNoLimit reports that no policy exists for a (category, currency)
	// pair. Not a failure: an expense without a policy has no limit.
	ErrNoLimit = errors.New("no limit configured")
)

var (
	ErrEmptyCategory    = fmt.Errorf("%w: category must not be empty", ErrValidation)
	ErrInvalidLimit     = fmt.Errorf("%w: limit_amount must be positive", ErrValidation)
	ErrInvalidLimitType = fmt.Errorf("%w: limit_type must be 'daily', 'weekly', or 'monthly'", ErrValidation)
	ErrInvalidDate      = fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrValidation)
)

// ParseLimitType validates a raw limit type string.
func ParseLimitType(s string) (LimitType, error) {
	switch lt := LimitType(s); lt {
	case Daily, Weekly, Monthly:
		return lt, nil
	default:
		return "", fmt.Errorf("%w (got %q)", ErrInvalidLimitType, s)
	}
}

// ParseDate validates a calendar-date string in the local time zone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w (got %q)", ErrInvalidDate, s)
	}
	return t, nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(e.Currency) == "" {
		return fmt.Errorf("%w: currency must not be empty", ErrValidation)
	}
	return nil
}

func (p LimitPolicy) Validate() error {
	if strings.TrimSpace(p.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(p.Currency) == "" {
		return fmt.Errorf("%w: currency must not be empty", ErrValidation)
	}
	if !p.LimitAmount.IsPositive() {
		return ErrInvalidLimit
	}
	if _, err := ParseLimitType(string(p.LimitType)); err != nil {
		return err
	}
	return nil
}
