package core

import (
	"errors"
	"testing"
	"time"
)

func TestResolveWindowDaily(t *testing.T) {
	ref := time.Date(2024, 3, 15, 14, 30, 45, 0, time.Local)

	start, end, err := ResolveWindow(Daily, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStart := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	wantEnd := time.Date(2024, 3, 16, 0, 0, 0, 0, time.Local)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

func TestResolveWindowWeekly(t *testing.T) {
	tests := []struct {
		name      string
		ref       time.Time
		wantStart time.Time
	}{
		{
			name:      "monday maps to itself",
			ref:       time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local), // Monday
			wantStart: time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local),
		},
		{
			name:      "wednesday maps back to monday",
			ref:       time.Date(2024, 3, 13, 23, 59, 59, 0, time.Local),
			wantStart: time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local),
		},
		{
			name:      "sunday belongs to the week started six days earlier",
			ref:       time.Date(2024, 3, 17, 12, 0, 0, 0, time.Local), // Sunday
			wantStart: time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local),
		},
		{
			name:      "week spanning a month boundary",
			ref:       time.Date(2024, 4, 2, 8, 0, 0, 0, time.Local), // Tuesday
			wantStart: time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ResolveWindow(Weekly, tt.ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantStart.AddDate(0, 0, 7)) {
				t.Errorf("end = %v, want start+7d", end)
			}
		})
	}
}

func TestResolveWindowMonthly(t *testing.T) {
	tests := []struct {
		name      string
		ref       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid month",
			ref:       time.Date(2024, 6, 20, 10, 0, 0, 0, time.Local),
			wantStart: time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2024, 7, 1, 0, 0, 0, 0, time.Local),
		},
		{
			name:      "december rolls into january of the next year",
			ref:       time.Date(2024, 12, 31, 23, 0, 0, 0, time.Local),
			wantStart: time.Date(2024, 12, 1, 0, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
		},
		{
			name:      "february in a leap year",
			ref:       time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local),
			wantStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ResolveWindow(Monthly, tt.ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestResolveWindowContainsReference(t *testing.T) {
	refs := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
		time.Date(2024, 3, 15, 14, 30, 45, 0, time.Local),
		time.Date(2024, 12, 31, 23, 59, 59, 0, time.Local),
	}

	for _, lt := range []LimitType{Daily, Weekly, Monthly} {
		for _, ref := range refs {
			start, end, err := ResolveWindow(lt, ref)
			if err != nil {
				t.Fatalf("%s %v: unexpected error: %v", lt, ref, err)
			}
			if start.After(ref) {
				t.Errorf("%s %v: start %v is after reference", lt, ref, start)
			}
			if !ref.Before(end) {
				t.Errorf("%s %v: reference is not before end %v", lt, ref, end)
			}
		}
	}
}

func TestResolveWindowUnknownType(t *testing.T) {
	_, _, err := ResolveWindow(LimitType("yearly"), time.Now())
	if err == nil {
		t.Fatal("expected error for unknown limit type")
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error is not a validation error: %v", err)
	}
}
