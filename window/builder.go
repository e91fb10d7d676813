package window

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"occupancy-forecaster/calendar"
	"occupancy-forecaster/dao"
	"occupancy-forecaster/models"
)

// Builder pulls the preceding weeks of raw samples from the store.
type Builder struct {
	store  dao.Store
	weeks  int
	logger zerolog.Logger
}

func NewBuilder(store dao.Store, weeks int, logger zerolog.Logger) *Builder {
	return &Builder{
		store:  store,
		weeks:  weeks,
		logger: logger.With().Str("component", "WindowBuilder").Logger(),
	}
}

// Build assembles the window for the week containing now from the b.weeks
// weeks before it. The week just before now's week has weeks-away 0.
func (b *Builder) Build(ctx context.Context, now time.Time) (*models.HistoricalWindow, error) {
	window := models.NewHistoricalWindow(now)

	for back := 1; back <= b.weeks; back++ {
		weekStart := calendar.WeeksBefore(now, back)
		path := dao.WeekDataPath(weekStart)

		raw, ok, err := b.store.Get(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
		}
		if !ok {
			b.logger.Debug().Str("path", path).Msg("no samples for week")
			continue
		}

		payload, err := DecodeWeek(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		perWeekday, err := payload.Series(back - 1)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		for weekday, series := range perWeekday {
			window.Append(weekday, series...)
		}
		b.logger.Debug().Str("path", path).Str("shape", payload.Kind.String()).Msg("merged week")
	}

	b.logger.Info().
		Str("for_date", window.ForDate).
		Int("weeks", b.weeks).
		Int("observations", window.Len()).
		Msg("historical window built")
	return window, nil
}
