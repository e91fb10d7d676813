// Package scheduler decides how long the tracker sleeps between cycles.
package scheduler

import (
	"errors"
	"time"

	"occupancy-forecaster/calendar"
	"occupancy-forecaster/models"
)

// ErrNoSchedule is returned when no weekly schedule is known yet.
var ErrNoSchedule = errors.New("no schedule available")

const (
	DEFAULT_POLL_INTERVAL  = 10 * time.Minute
	DEFAULT_ERROR_INTERVAL = 30 * time.Second

	// DEFAULT_OPENING is where a closed day's sleep lands on the following day.
	DEFAULT_OPENING = 6*time.Hour + 30*time.Minute
)

// Policy carries the intervals the scheduler works with.
type Policy struct {
	PollInterval   time.Duration
	ErrorInterval  time.Duration
	DefaultOpening time.Duration
}

// NextDelay returns how long to wait before the next cycle.
//
//   - today closed: until DefaultOpening tomorrow
//   - before opening: until opening
//   - within hours: until the next PollInterval boundary counted from the top of the hour
//   - past closing: until tomorrow's opening, or DefaultOpening if tomorrow is closed
func NextDelay(now time.Time, schedule *models.WeeklySchedule, policy Policy) (time.Duration, error) {
	if schedule == nil {
		return 0, ErrNoSchedule
	}
	weekday := calendar.WeekdayIndex(now)

	opening, closing, open := schedule.TimingFor(weekday).Hours()
	if !open {
		return untilTomorrow(now, policy.DefaultOpening), nil
	}

	sinceMidnight := wallOffset(now)
	switch {
	case sinceMidnight < opening:
		return nonNegative(atOffset(now, 0, opening).Sub(now)), nil
	case sinceMidnight < closing:
		return pollDelay(now, policy.PollInterval), nil
	}

	tomorrowOpening, _, tomorrowOpen := schedule.TimingFor((weekday + 1) % 7).Hours()
	if !tomorrowOpen {
		tomorrowOpening = policy.DefaultOpening
	}
	return untilTomorrow(now, tomorrowOpening), nil
}

// IsStandardInterval reports whether now falls within today's opening hours.
func IsStandardInterval(now time.Time, schedule *models.WeeklySchedule) (bool, error) {
	if schedule == nil {
		return false, ErrNoSchedule
	}
	opening, closing, open := schedule.TimingFor(calendar.WeekdayIndex(now)).Hours()
	if !open {
		return false, nil
	}
	sinceMidnight := wallOffset(now)
	return sinceMidnight >= opening && sinceMidnight < closing, nil
}

// pollDelay aligns the next wake-up to the poll grid of the current hour.
// A wake-up exactly on the grid waits a full interval.
func pollDelay(now time.Time, poll time.Duration) time.Duration {
	if poll <= 0 {
		return 0
	}
	sinceHour := time.Duration(now.Minute())*time.Minute +
		time.Duration(now.Second())*time.Second +
		time.Duration(now.Nanosecond())
	return poll - sinceHour%poll
}

// untilTomorrow measures the real time until an offset on the next calendar day.
func untilTomorrow(now time.Time, offset time.Duration) time.Duration {
	return nonNegative(atOffset(now, 1, offset).Sub(now))
}

// wallOffset is the wall-clock time of day of t, unaffected by DST shifts earlier that day.
func wallOffset(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// atOffset returns the wall-clock instant offset after midnight, days after t's date.
func atOffset(t time.Time, days int, offset time.Duration) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+days, 0, 0, 0, int(offset), t.Location())
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
