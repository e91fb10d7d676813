package calendar

import (
	"fmt"
	"time"
)

// DATE_KEY_LAYOUT is the layout used for week-start and day keys in stored paths.
const DATE_KEY_LAYOUT = "2006-01-02"

// DEFAULT_TIMEZONE is the venue's local timezone.
const DEFAULT_TIMEZONE = "Europe/London"

// WeekdayIndex maps a date to its Monday-based index (Monday=0 .. Sunday=6).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekdayFromIndex is the inverse of WeekdayIndex.
func WeekdayFromIndex(index int) (time.Weekday, error) {
	if index < 0 || index > 6 {
		return 0, fmt.Errorf("weekday index out of range: %d", index)
	}
	return time.Weekday((index + 1) % 7), nil
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday of t's week.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -WeekdayIndex(t))
}

// WeeksBefore returns the start of the week n weeks before t's week.
func WeeksBefore(t time.Time, n int) time.Time {
	return StartOfWeek(t).AddDate(0, 0, -7*n)
}

// DateKey formats a date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DATE_KEY_LAYOUT)
}

// WeekKey formats the start of t's week as YYYY-MM-DD.
func WeekKey(t time.Time) string {
	return DateKey(StartOfWeek(t))
}

// ParseDateKey parses a YYYY-MM-DD key in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DATE_KEY_LAYOUT, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// Clock yields the current time in the venue's timezone.
type Clock interface {
	Now() time.Time
}

// LocalClock is a Clock bound to a fixed location.
type LocalClock struct {
	loc *time.Location
}

// NewLocalClock loads the named timezone.
func NewLocalClock(name string) (*LocalClock, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", name, err)
	}
	return &LocalClock{loc: loc}, nil
}

func (c *LocalClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *LocalClock) Location() *time.Location {
	return c.loc
}

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}
