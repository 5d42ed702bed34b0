// Package core defines the tracker's domain types and the period window
// arithmetic used for limit checking.
package core

import (
	"fmt"
	"time"
)

// WindowResolver computes the half-open interval [start, end) containing a
// reference instant. Each limit type has its own resolver so the boundary
// rules stay next to the type they belong to.
type WindowResolver interface {
	Window(ref time.Time) (start, end time.Time)
}

// DailyWindow resolves to the calendar day of the reference instant.
type DailyWindow struct{}

func (DailyWindow) Window(ref time.Time) (time.Time, time.Time) {
	start := midnight(ref)
	return start, start.AddDate(0, 0, 1)
}

// WeeklyWindow resolves to the ISO week (Monday through Sunday) of the
// reference instant.
type WeeklyWindow struct{}

func (WeeklyWindow) Window(ref time.Time) (time.Time, time.Time) {
	// time.Weekday numbers Sunday as 0; shift so Monday is day 0.
	offset := (int(ref.Weekday()) + 6) % 7
	start := midnight(ref).AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// MonthlyWindow resolves to the calendar month of the reference instant.
type MonthlyWindow struct{}

func (MonthlyWindow) Window(ref time.Time) (time.Time, time.Time) {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	var end time.Time
	if ref.Month() == time.December {
		end = time.Date(ref.Year()+1, time.January, 1, 0, 0, 0, 0, ref.Location())
	} else {
		end = time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, ref.Location())
	}
	return start, end
}

// windowResolvers maps limit types to their resolvers.
var windowResolvers = map[LimitType]WindowResolver{
	Daily:   DailyWindow{},
	Weekly:  WeeklyWindow{},
	Monthly: MonthlyWindow{},
}

// ResolveWindow returns the [start, end) window containing ref for the given
// limit type, in ref's own time zone. An unrecognized limit type is a
// configuration error, never a silent default.
func ResolveWindow(lt LimitType, ref time.Time) (time.Time, time.Time, error) {
	resolver, ok := windowResolvers[lt]
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w (got %q)", ErrInvalidLimitType, lt)
	}
	start, end := resolver.Window(ref)
	return start, end, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
