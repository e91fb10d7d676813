package scraper

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"occupancy-forecaster/models"
)

var (
	ErrOccupancyNotFound = errors.New("occupancy not found on page")
	ErrScheduleMalformed = errors.New("schedule malformed")
)

var (
	occupancyRegex     = regexp.MustCompile(`Occupancy:\s+(\d+)%`)
	scheduleEntryRegex = regexp.MustCompile(`<dd class="paired-values-list__value">(.*?)</dd>`)
	openingHoursRegex  = regexp.MustCompile(`^(.*)\sto\s(.*)$`)
	clockRegex         = regexp.MustCompile(`^(\d{1,2}).(\d{2})\s*([aApP][mM])$`)
)

// ExtractOccupancy finds the live occupancy percentage in a venue page.
func ExtractOccupancy(page string) (int, error) {
	match := occupancyRegex.FindStringSubmatch(page)
	if match == nil {
		return 0, ErrOccupancyNotFound
	}
	occupancy, err := strconv.Atoi(match[1])
	if err != nil || occupancy > 100 {
		return 0, fmt.Errorf("%w: %q", ErrOccupancyNotFound, match[1])
	}
	return occupancy, nil
}

// ExtractSchedule reads the seven opening-hours entries, Monday first.
func ExtractSchedule(page string, weekStart time.Time) (models.WeeklySchedule, error) {
	entries := scheduleEntryRegex.FindAllStringSubmatch(page, -1)
	if len(entries) != 7 {
		return models.WeeklySchedule{}, fmt.Errorf("%w: found %d entries", ErrScheduleMalformed, len(entries))
	}

	var timings [7]models.Timing
	for i, entry := range entries {
		timing, err := ParseTiming(entry[1])
		if err != nil {
			return models.WeeklySchedule{}, err
		}
		timings[i] = timing
	}
	return models.NewWeeklySchedule(weekStart, timings), nil
}

// ParseTiming parses "6.30am to 10.00pm" or "CLOSED".
func ParseTiming(entry string) (models.Timing, error) {
	entry = strings.TrimSpace(entry)
	if strings.EqualFold(entry, "CLOSED") {
		return models.ClosedTiming(), nil
	}

	match := openingHoursRegex.FindStringSubmatch(entry)
	if match == nil {
		return models.Timing{}, fmt.Errorf("%w: %q", ErrScheduleMalformed, entry)
	}
	opening, err := parseClock(match[1])
	if err != nil {
		return models.Timing{}, err
	}
	closing, err := parseClock(match[2])
	if err != nil {
		return models.Timing{}, err
	}
	timing, err := models.OpenTiming(opening, closing)
	if err != nil {
		return models.Timing{}, fmt.Errorf("%w: %v", ErrScheduleMalformed, err)
	}
	return timing, nil
}

// parseClock parses 12-hour times such as "6.30am" or "12.00 pm".
func parseClock(s string) (time.Duration, error) {
	match := clockRegex.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return 0, fmt.Errorf("%w: time %q", ErrScheduleMalformed, s)
	}
	hour, _ := strconv.Atoi(match[1])
	minute, _ := strconv.Atoi(match[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, fmt.Errorf("%w: time %q", ErrScheduleMalformed, s)
	}

	hour %= 12
	if strings.EqualFold(match[3], "pm") {
		hour += 12
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}
