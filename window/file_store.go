package window

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"occupancy-forecaster/calendar"
	"occupancy-forecaster/models"
	"occupancy-forecaster/util"
)

// ErrCorruptSnapshot marks a persisted snapshot that cannot be read back.
var ErrCorruptSnapshot = errors.New("window snapshot unreadable")

// Snapshot is the persisted predictor state.
type Snapshot struct {
	Window        *models.HistoricalWindow `json:"window"`
	LastPredicted string                   `json:"last_predicted,omitempty"`
}

// PredictedOn reports whether a forecast was already produced on day or later.
func (s *Snapshot) PredictedOn(day time.Time) bool {
	return s.LastPredicted != "" && s.LastPredicted >= calendar.DateKey(day)
}

// FileStore keeps a Snapshot in a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

// Load returns nil without error when no snapshot has been saved yet.
func (f *FileStore) Load() (*Snapshot, error) {
	if _, err := os.Stat(f.path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	var snap Snapshot
	if err := util.ReadJSONFile(f.path, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Window == nil {
		return nil, fmt.Errorf("%w: %q has no window", ErrCorruptSnapshot, f.path)
	}
	return &snap, nil
}

func (f *FileStore) Save(snap *Snapshot) error {
	return util.WriteJSONFileAtomic(f.path, snap)
}
