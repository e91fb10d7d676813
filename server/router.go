package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ForecastRoutes is implemented by handlers.ForecastHandler.
type ForecastRoutes interface {
	Ping(w http.ResponseWriter, r *http.Request)
	GetStatus(w http.ResponseWriter, r *http.Request)
	GetForecastToday(w http.ResponseWriter, r *http.Request)
	GetForecastForWeekday(w http.ResponseWriter, r *http.Request)
	GetRecentSamples(w http.ResponseWriter, r *http.Request)
}

type Router struct {
	forecastHandler ForecastRoutes
	router          *mux.Router
}

// NewRouter creates a router with the app's routes.
func NewRouter(
	forecastHandler ForecastRoutes,
	router *mux.Router) *Router {
	return &Router{
		forecastHandler: forecastHandler,
		router:          router,
	}
}

func (r *Router) RegisterRoutes() {
	r.router.HandleFunc("/ping", r.forecastHandler.Ping).Methods("GET")
	r.router.HandleFunc("/v1/status", r.forecastHandler.GetStatus).Methods("GET")
	r.router.HandleFunc("/v1/forecast/today", r.forecastHandler.GetForecastToday).Methods("GET")
	// weekday is 0 (Monday) .. 6 (Sunday)
	r.router.HandleFunc("/v1/forecast/{weekday:[0-9]+}", r.forecastHandler.GetForecastForWeekday).Methods("GET")
	// expects ?limit={count(int)}
	r.router.HandleFunc("/v1/samples/recent", r.forecastHandler.GetRecentSamples).Methods("GET")

	r.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}
