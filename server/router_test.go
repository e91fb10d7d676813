package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

// MockForecastHandler answers every route with its own name.
type MockForecastHandler struct{}

func reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

func (h *MockForecastHandler) Ping(w http.ResponseWriter, r *http.Request) {
	reply(`{"message": "pong"}`)(w, r)
}

func (h *MockForecastHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	reply(`{"message": "status"}`)(w, r)
}

func (h *MockForecastHandler) GetForecastToday(w http.ResponseWriter, r *http.Request) {
	reply(`{"message": "today"}`)(w, r)
}

func (h *MockForecastHandler) GetForecastForWeekday(w http.ResponseWriter, r *http.Request) {
	body := fmt.Sprintf(`{"weekday": %q}`, mux.Vars(r)["weekday"])
	reply(body)(w, r)
}

func (h *MockForecastHandler) GetRecentSamples(w http.ResponseWriter, r *http.Request) {
	reply(`{"message": "samples"}`)(w, r)
}

func TestRouter_RegisterRoutes(t *testing.T) {
	router := mux.NewRouter()
	appRouter := NewRouter(&MockForecastHandler{}, router)
	appRouter.RegisterRoutes()

	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
		response   string
	}{
		{name: "Ping Route", method: "GET", path: "/ping", statusCode: http.StatusOK, response: `{"message": "pong"}`},
		{name: "Status", method: "GET", path: "/v1/status", statusCode: http.StatusOK, response: `{"message": "status"}`},
		{name: "Forecast Today", method: "GET", path: "/v1/forecast/today", statusCode: http.StatusOK, response: `{"message": "today"}`},
		{name: "Forecast Weekday", method: "GET", path: "/v1/forecast/3", statusCode: http.StatusOK, response: `{"weekday": "3"}`},
		{name: "Recent Samples", method: "GET", path: "/v1/samples/recent?limit=5", statusCode: http.StatusOK, response: `{"message": "samples"}`},
		{name: "Non Numeric Weekday", method: "GET", path: "/v1/forecast/monday", statusCode: http.StatusNotFound},
		{name: "Wrong Method", method: "POST", path: "/v1/status", statusCode: http.StatusMethodNotAllowed},
		{name: "Invalid Route", method: "GET", path: "/invalid", statusCode: http.StatusNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(test.method, test.path, nil)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, test.statusCode, rr.Code)
			if test.response != "" {
				assert.Equal(t, test.response, rr.Body.String())
			}
		})
	}
}

func TestRouter_ServesMetrics(t *testing.T) {
	router := mux.NewRouter()
	NewRouter(&MockForecastHandler{}, router).RegisterRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
