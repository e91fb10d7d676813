package window

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"occupancy-forecaster/calendar"
)

// Refresher keeps the persisted window current: rebuilt once per week and
// otherwise reused untouched.
type Refresher struct {
	builder *Builder
	files   *FileStore
	logger  zerolog.Logger
}

func NewRefresher(builder *Builder, files *FileStore, logger zerolog.Logger) *Refresher {
	return &Refresher{
		builder: builder,
		files:   files,
		logger:  logger.With().Str("component", "WindowRefresher").Logger(),
	}
}

// Ensure returns the snapshot for now's week, rebuilding and saving it when
// the stored one is missing or belongs to another week.
func (r *Refresher) Ensure(ctx context.Context, now time.Time) (*Snapshot, bool, error) {
	snap, err := r.files.Load()
	if err != nil {
		return nil, false, err
	}
	if snap != nil && snap.Window.IsFor(now) {
		return snap, false, nil
	}

	window, err := r.builder.Build(ctx, now)
	if err != nil {
		return nil, false, err
	}
	fresh := &Snapshot{Window: window}
	if snap != nil {
		fresh.LastPredicted = snap.LastPredicted
	}
	if err := r.files.Save(fresh); err != nil {
		return nil, false, err
	}
	r.logger.Info().Str("for_date", window.ForDate).Str("path", r.files.Path()).Msg("window rebuilt")
	return fresh, true, nil
}

// MarkPredicted records that today's forecast has been written.
func (r *Refresher) MarkPredicted(snap *Snapshot, day time.Time) error {
	snap.LastPredicted = calendar.DateKey(day)
	return r.files.Save(snap)
}
