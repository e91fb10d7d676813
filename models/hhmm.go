package models

import (
	"fmt"
	"strconv"
	"time"
)

// HHMM encodes a time of day as hour*100 + minute (09:30 => 930).
//
// Distance and Add work on the raw integer, not on minutes: 0959 and 1000 are
// 41 apart, and 0930 + 30 is 0960. Callers that step through a day must drop
// values for which Valid reports false.
type HHMM uint16

// NewHHMM builds an HHMM from its components.
func NewHHMM(hour, minute int) HHMM {
	return HHMM(hour*100 + minute)
}

// HHMMFromTime takes the wall-clock hour and minute of t.
func HHMMFromTime(t time.Time) HHMM {
	return NewHHMM(t.Hour(), t.Minute())
}

// HHMMFromOffset converts an offset since midnight, dropping seconds.
func HHMMFromOffset(d time.Duration) HHMM {
	minutes := int(d / time.Minute)
	return NewHHMM(minutes/60, minutes%60)
}

// ParseHHMM parses keys such as "0930" or "930".
func ParseHHMM(s string) (HHMM, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid HHMM %q: %w", s, err)
	}
	h := HHMM(v)
	if !h.Valid() {
		return 0, fmt.Errorf("invalid HHMM %q: out of range", s)
	}
	return h, nil
}

func (h HHMM) Hour() int {
	return int(h) / 100
}

func (h HHMM) Minute() int {
	return int(h) % 100
}

// Valid reports whether h names a real time of day.
func (h HHMM) Valid() bool {
	return h.Hour() < 24 && h.Minute() < 60
}

// Distance is |h - other| on the integer encoding.
func (h HHMM) Distance(other HHMM) int {
	d := int(h) - int(other)
	if d < 0 {
		return -d
	}
	return d
}

// Add adds minutes to the integer encoding without carrying into the hour.
func (h HHMM) Add(minutes int) HHMM {
	return HHMM(int(h) + minutes)
}

// Offset returns h as a duration since midnight.
func (h HHMM) Offset() time.Duration {
	return time.Duration(h.Hour())*time.Hour + time.Duration(h.Minute())*time.Minute
}

// String renders the 4-digit key used in stored paths and curves.
func (h HHMM) String() string {
	return fmt.Sprintf("%04d", uint16(h))
}
