package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occupancy-forecaster/calendar"
	"occupancy-forecaster/models"
	"occupancy-forecaster/predictor"
	"occupancy-forecaster/recorder"
	services "occupancy-forecaster/service"
)

type stubPreviewer struct {
	curve   models.PredictionCurve
	err     error
	weekday int
}

func (s *stubPreviewer) Preview(weekday int, timing models.Timing) (models.PredictionCurve, error) {
	s.weekday = weekday
	return s.curve, s.err
}

type stubRecorder struct {
	recorder.NoopRecorder
	samples  []recorder.SampleEvent
	limit    int
	forecast models.PredictionCurve
}

func (s *stubRecorder) ForecastFor(_ context.Context, day time.Time) (models.PredictionCurve, error) {
	return s.forecast, nil
}

func (s *stubRecorder) RecentSamples(_ context.Context, limit int) ([]recorder.SampleEvent, error) {
	s.limit = limit
	return s.samples, nil
}

// Thursday 2026-10-15.
var thursday = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func scheduledState() *services.StatusState {
	var timings [7]models.Timing
	for i := range timings {
		timings[i] = models.MustOpenTiming(8*time.Hour, 20*time.Hour)
	}
	state := services.NewStatusState()
	state.RecordSample(thursday, 42, true, models.NewWeeklySchedule(thursday, timings), thursday.Add(10*time.Minute))
	return state
}

func serve(h *ForecastHandler, path string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/ping", h.Ping)
	router.HandleFunc("/v1/status", h.GetStatus)
	router.HandleFunc("/v1/forecast/today", h.GetForecastToday)
	router.HandleFunc("/v1/forecast/{weekday}", h.GetForecastForWeekday)
	router.HandleFunc("/v1/samples/recent", h.GetRecentSamples)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
	return rr
}

func newHandler(state *services.StatusState, previewer CurvePreviewer, rec recorder.Recorder) *ForecastHandler {
	return NewForecastHandler(state, previewer, rec, calendar.FixedClock{At: thursday}, zerolog.Nop())
}

func TestForecastHandler_Ping(t *testing.T) {
	rr := serve(newHandler(services.NewStatusState(), &stubPreviewer{}, recorder.NewNoopRecorder()), "/ping")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())
}

func TestForecastHandler_GetStatus(t *testing.T) {
	rr := serve(newHandler(scheduledState(), &stubPreviewer{}, recorder.NewNoopRecorder()), "/v1/status")
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, float64(42), body["occupancy"])
	assert.Equal(t, true, body["in_hours"])
	assert.NotNil(t, body["schedule"])
}

func TestForecastHandler_GetForecastToday(t *testing.T) {
	t.Run("no schedule yet", func(t *testing.T) {
		rr := serve(newHandler(services.NewStatusState(), &stubPreviewer{}, recorder.NewNoopRecorder()), "/v1/forecast/today")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("serves the curve written today", func(t *testing.T) {
		state := scheduledState()
		state.RecordForecast("2026-10-15", models.PredictionCurve{"0800": 12})
		previewer := &stubPreviewer{err: errors.New("must not be called")}

		rr := serve(newHandler(state, previewer, recorder.NewNoopRecorder()), "/v1/forecast/today")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"weekday":3,"timing":{"open":true,"opening":"08:00:00","closing":"20:00:00"},"curve":{"0800":12}}`, rr.Body.String())
	})

	t.Run("serves the curve recorded before a restart", func(t *testing.T) {
		previewer := &stubPreviewer{err: errors.New("must not be called")}
		rec := &stubRecorder{forecast: models.PredictionCurve{"0800": 17}}

		rr := serve(newHandler(scheduledState(), previewer, rec), "/v1/forecast/today")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"0800":17`)
	})

	t.Run("falls back to the persisted window", func(t *testing.T) {
		previewer := &stubPreviewer{curve: models.PredictionCurve{"0800": 30}}

		rr := serve(newHandler(scheduledState(), previewer, recorder.NewNoopRecorder()), "/v1/forecast/today")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 3, previewer.weekday)
		assert.Contains(t, rr.Body.String(), `"0800":30`)
	})
}

func TestForecastHandler_GetForecastForWeekday(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		previewer  *stubPreviewer
		statusCode int
	}{
		{name: "valid weekday", path: "/v1/forecast/6", previewer: &stubPreviewer{curve: models.PredictionCurve{"0800": 5}}, statusCode: http.StatusOK},
		{name: "out of range", path: "/v1/forecast/7", previewer: &stubPreviewer{}, statusCode: http.StatusBadRequest},
		{name: "not a number", path: "/v1/forecast/sunday", previewer: &stubPreviewer{}, statusCode: http.StatusBadRequest},
		{name: "no window", path: "/v1/forecast/1", previewer: &stubPreviewer{err: services.ErrNoWindow}, statusCode: http.StatusNotFound},
		{name: "no history", path: "/v1/forecast/1", previewer: &stubPreviewer{err: predictor.ErrNoObservations}, statusCode: http.StatusOK},
		{name: "broken window", path: "/v1/forecast/1", previewer: &stubPreviewer{err: errors.New("disk")}, statusCode: http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rr := serve(newHandler(scheduledState(), test.previewer, recorder.NewNoopRecorder()), test.path)
			assert.Equal(t, test.statusCode, rr.Code)
		})
	}
}

func TestForecastHandler_GetRecentSamples(t *testing.T) {
	rec := &stubRecorder{samples: []recorder.SampleEvent{{At: thursday, Occupancy: 42, InHours: true}}}
	h := newHandler(scheduledState(), &stubPreviewer{}, rec)

	rr := serve(h, "/v1/samples/recent?limit=5")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, rec.limit)
	assert.JSONEq(t, `[{"at":"2026-10-15T12:00:00Z","occupancy":42,"in_hours":true}]`, rr.Body.String())

	rr = serve(h, "/v1/samples/recent")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, DEFAULT_SAMPLE_LIMIT, rec.limit)

	rr = serve(h, "/v1/samples/recent?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(newHandler(scheduledState(), &stubPreviewer{}, recorder.NewNoopRecorder()), "/v1/samples/recent")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}
