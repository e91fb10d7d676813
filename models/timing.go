package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const clockLayout = "15:04:05"

// Timing is one day's opening hours. A closed day carries no times; an open
// day always carries both. Opening may be later than closing when the venue
// stays open past midnight.
type Timing struct {
	open    bool
	opening time.Duration
	closing time.Duration
}

// ClosedTiming returns the timing of a day with no opening hours.
func ClosedTiming() Timing {
	return Timing{}
}

// OpenTiming returns an open day; both offsets are measured from midnight.
func OpenTiming(opening, closing time.Duration) (Timing, error) {
	if !withinDay(opening) || !withinDay(closing) {
		return Timing{}, fmt.Errorf("timing out of range: opening=%s closing=%s", opening, closing)
	}
	return Timing{open: true, opening: opening, closing: closing}, nil
}

// MustOpenTiming is OpenTiming for literals known to be valid.
func MustOpenTiming(opening, closing time.Duration) Timing {
	t, err := OpenTiming(opening, closing)
	if err != nil {
		panic(err)
	}
	return t
}

func withinDay(d time.Duration) bool {
	return d >= 0 && d < 24*time.Hour
}

func (t Timing) IsOpen() bool {
	return t.open
}

// Hours returns the opening and closing offsets; ok is false for a closed day.
func (t Timing) Hours() (opening, closing time.Duration, ok bool) {
	return t.opening, t.closing, t.open
}

// WrapsMidnight reports an open day whose closing time falls on the next day.
func (t Timing) WrapsMidnight() bool {
	return t.open && t.opening > t.closing
}

func (t Timing) String() string {
	if !t.open {
		return "CLOSED"
	}
	return fmt.Sprintf("%s-%s", formatOffset(t.opening), formatOffset(t.closing))
}

type timingJSON struct {
	Open    bool    `json:"open"`
	Opening *string `json:"opening"`
	Closing *string `json:"closing"`
}

func (t Timing) MarshalJSON() ([]byte, error) {
	out := timingJSON{Open: t.open}
	if t.open {
		opening, closing := formatOffset(t.opening), formatOffset(t.closing)
		out.Opening, out.Closing = &opening, &closing
	}
	return json.Marshal(out)
}

func (t *Timing) UnmarshalJSON(data []byte) error {
	var in timingJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if !in.Open {
		if in.Opening != nil || in.Closing != nil {
			return errors.New("closed timing must not carry opening hours")
		}
		*t = ClosedTiming()
		return nil
	}
	if in.Opening == nil || in.Closing == nil {
		return errors.New("open timing requires opening and closing")
	}
	opening, err := parseOffset(*in.Opening)
	if err != nil {
		return err
	}
	closing, err := parseOffset(*in.Closing)
	if err != nil {
		return err
	}
	parsed, err := OpenTiming(opening, closing)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func formatOffset(d time.Duration) string {
	return time.Time{}.Add(d).Format(clockLayout)
}

func parseOffset(s string) (time.Duration, error) {
	v, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return time.Duration(v.Hour())*time.Hour + time.Duration(v.Minute())*time.Minute +
		time.Duration(v.Second())*time.Second, nil
}
