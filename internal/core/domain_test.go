package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseLimitType(t *testing.T) {
	for _, valid := range []string{"daily", "weekly", "monthly"} {
		lt, err := ParseLimitType(valid)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", valid, err)
		}
		if string(lt) != valid {
			t.Errorf("got %q, want %q", lt, valid)
		}
	}

	for _, invalid := range []string{"", "yearly", "DAILY", "bi-weekly"} {
		if _, err := ParseLimitType(invalid); !errors.Is(err, ErrValidation) {
			t.Errorf("%q: expected validation error, got %v", invalid, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || int(d.Month()) != 1 || d.Day() != 31 {
		t.Errorf("parsed wrong date: %v", d)
	}

	for _, bad := range []string{"", "31-01-2024", "2024/01/31", "2024-13-01", "today"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("%q: expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Category: "food", Amount: decimal.NewFromInt(10), Currency: "USD"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if err := (Expense{Category: "  ", Currency: "USD"}).Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Errorf("expected ErrEmptyCategory, got %v", err)
	}
	if err := (Expense{Category: "food", Currency: ""}).Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for empty currency, got %v", err)
	}
}

func TestLimitPolicyValidate(t *testing.T) {
	good := LimitPolicy{
		Category:    "food",
		Currency:    "USD",
		LimitAmount: decimal.NewFromInt(50),
		LimitType:   Daily,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []LimitPolicy{
		{Category: "", Currency: "USD", LimitAmount: decimal.NewFromInt(50), LimitType: Daily},
		{Category: "food", Currency: "USD", LimitAmount: decimal.Zero, LimitType: Daily},
		{Category: "food", Currency: "USD", LimitAmount: decimal.NewFromInt(-5), LimitType: Daily},
		{Category: "food", Currency: "USD", LimitAmount: decimal.NewFromInt(50), LimitType: "hourly"},
	}
	for i, p := range bads {
		if err := p.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}
