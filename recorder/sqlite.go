package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"occupancy-forecaster/calendar"
	"occupancy-forecaster/models"
)

// SQLiteRecorder persists samples and forecasts to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info().Str("component", "SQLiteRecorder").Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS samples (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			week      TEXT NOT NULL,
			weekday   INTEGER NOT NULL,
			hhmm      TEXT NOT NULL,
			occupancy INTEGER NOT NULL,
			in_hours  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_ts ON samples(timestamp)`,
		`CREATE TABLE IF NOT EXISTS forecasts (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			day       TEXT NOT NULL,
			points    INTEGER NOT NULL,
			curve     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_day ON forecasts(day)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSample(ctx context.Context, evt *SampleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO samples (timestamp, week, weekday, hhmm, occupancy, in_hours) VALUES (?, ?, ?, ?, ?, ?)`,
		evt.At.Unix(), calendar.WeekKey(evt.At), calendar.WeekdayIndex(evt.At),
		evt.At.Format("1504"), evt.Occupancy, evt.InHours,
	)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordForecast(ctx context.Context, evt *ForecastEvent) error {
	curve, err := json.Marshal(evt.Curve)
	if err != nil {
		return fmt.Errorf("marshal curve: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO forecasts (timestamp, day, points, curve) VALUES (?, ?, ?, ?)`,
		time.Now().Unix(), calendar.DateKey(evt.Day), len(evt.Curve), string(curve),
	)
	if err != nil {
		return fmt.Errorf("insert forecast: %w", err)
	}
	return nil
}

// RecentSamples returns up to limit samples, newest first, in UTC.
func (r *SQLiteRecorder) RecentSamples(ctx context.Context, limit int) ([]SampleEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT timestamp, occupancy, in_hours FROM samples ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []SampleEvent{}
	for rows.Next() {
		var ts int64
		var evt SampleEvent
		if err := rows.Scan(&ts, &evt.Occupancy, &evt.InHours); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		evt.At = time.Unix(ts, 0).UTC()
		samples = append(samples, evt)
	}
	return samples, rows.Err()
}

// ForecastFor returns the latest recorded curve for a day, or nil.
func (r *SQLiteRecorder) ForecastFor(ctx context.Context, day time.Time) (models.PredictionCurve, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT curve FROM forecasts WHERE day = ? ORDER BY id DESC LIMIT 1`, calendar.DateKey(day)).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query forecast: %w", err)
	}
	curve := models.PredictionCurve{}
	if err := json.Unmarshal([]byte(raw), &curve); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	return curve, nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
