package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"occupancy-forecaster/calendar"
	"occupancy-forecaster/models"
	"occupancy-forecaster/predictor"
	"occupancy-forecaster/recorder"
	services "occupancy-forecaster/service"
)

const (
	WEEKDAY_PATH_VAR     = "weekday"
	LIMIT_QUERY_ARG      = "limit"
	DEFAULT_SAMPLE_LIMIT = 50
	MAX_SAMPLE_LIMIT     = 1000
)

// CurvePreviewer computes a weekday's curve from the persisted window.
type CurvePreviewer interface {
	Preview(weekday int, timing models.Timing) (models.PredictionCurve, error)
}

// ForecastResponse is the body of the forecast routes.
type ForecastResponse struct {
	Weekday int                    `json:"weekday"`
	Timing  models.Timing          `json:"timing"`
	Curve   models.PredictionCurve `json:"curve"`
}

type ForecastHandler struct {
	state     *services.StatusState
	forecasts CurvePreviewer
	recorder  recorder.Recorder
	clock     calendar.Clock
	logger    zerolog.Logger
}

func NewForecastHandler(
	state *services.StatusState,
	forecasts CurvePreviewer,
	rec recorder.Recorder,
	clock calendar.Clock,
	logger zerolog.Logger,
) *ForecastHandler {
	return &ForecastHandler{
		state:     state,
		forecasts: forecasts,
		recorder:  rec,
		clock:     clock,
		logger:    logger.With().Str("component", "ForecastHandler").Logger(),
	}
}

func (h *ForecastHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

func (h *ForecastHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.state.Snapshot())
}

func (h *ForecastHandler) GetForecastToday(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()
	weekday := calendar.WeekdayIndex(now)
	status := h.state.Snapshot()
	if status.Schedule == nil {
		http.Error(w, "no schedule scraped yet", http.StatusServiceUnavailable)
		return
	}
	timing := status.Schedule.TimingFor(weekday)

	if status.ForecastDay == calendar.DateKey(now) {
		h.writeJSON(w, http.StatusOK, ForecastResponse{Weekday: weekday, Timing: timing, Curve: status.Forecast})
		return
	}
	// Written before a restart.
	recorded, err := h.recorder.ForecastFor(r.Context(), now)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to load recorded forecast")
	}
	if recorded != nil {
		h.writeJSON(w, http.StatusOK, ForecastResponse{Weekday: weekday, Timing: timing, Curve: recorded})
		return
	}
	h.preview(w, weekday, timing)
}

func (h *ForecastHandler) GetForecastForWeekday(w http.ResponseWriter, r *http.Request) {
	weekday, err := strconv.Atoi(mux.Vars(r)[WEEKDAY_PATH_VAR])
	if err != nil || weekday < 0 || weekday > 6 {
		http.Error(w, "weekday must be an integer between 0 (Monday) and 6 (Sunday)", http.StatusBadRequest)
		return
	}
	status := h.state.Snapshot()
	if status.Schedule == nil {
		http.Error(w, "no schedule scraped yet", http.StatusServiceUnavailable)
		return
	}
	h.preview(w, weekday, status.Schedule.TimingFor(weekday))
}

func (h *ForecastHandler) GetRecentSamples(w http.ResponseWriter, r *http.Request) {
	limit := DEFAULT_SAMPLE_LIMIT
	if raw := r.URL.Query().Get(LIMIT_QUERY_ARG); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > MAX_SAMPLE_LIMIT {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	samples, err := h.recorder.RecentSamples(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load recent samples")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if samples == nil {
		samples = []recorder.SampleEvent{}
	}
	h.writeJSON(w, http.StatusOK, samples)
}

func (h *ForecastHandler) preview(w http.ResponseWriter, weekday int, timing models.Timing) {
	curve, err := h.forecasts.Preview(weekday, timing)
	switch {
	case errors.Is(err, services.ErrNoWindow):
		http.Error(w, "no historical window yet", http.StatusNotFound)
		return
	case errors.Is(err, predictor.ErrNoObservations):
		curve = models.PredictionCurve{}
	case err != nil:
		h.logger.Error().Err(err).Int("weekday", weekday).Msg("failed to compute forecast")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, ForecastResponse{Weekday: weekday, Timing: timing, Curve: curve})
}

func (h *ForecastHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("error encoding response")
	}
}
