package di

import (
	"fmt"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"occupancy-forecaster/api"
	"occupancy-forecaster/api/firebase"
	"occupancy-forecaster/api/scraper"
	"occupancy-forecaster/calendar"
	"occupancy-forecaster/config"
	"occupancy-forecaster/dao"
	"occupancy-forecaster/dao/redis"
	"occupancy-forecaster/db"
	"occupancy-forecaster/predictor"
	"occupancy-forecaster/recorder"
	"occupancy-forecaster/scheduler"
	"occupancy-forecaster/server"
	"occupancy-forecaster/server/handlers"
	services "occupancy-forecaster/service"
	"occupancy-forecaster/window"
)

// Container holds all application dependencies.
type Container struct {
	Clock                   *calendar.LocalClock
	Store                   dao.Store
	Scraper                 scraper.VenueScraper
	Recorder                recorder.Recorder
	WindowRefresher         *window.Refresher
	ForecastService         *services.ForecastService
	StatusState             *services.StatusState
	OccupancyTrackerService *services.OccupancyTrackerService
	ForecastHandler         *handlers.ForecastHandler
	MuxRouter               *mux.Router
	Router                  *server.Router
	OccupancyHttpServer     *server.OccupancyHttpServer

	closers []func() error
}

// NewContainer initializes and wires up all dependencies.
func NewContainer(cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	logger.Info().Str("env", cfg.Environment).Str("store", cfg.Store.Driver).Msg("initializing container")
	c := &Container{}

	clock, err := calendar.NewLocalClock(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	c.Clock = clock

	store, err := c.newStore(cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store

	// Initialize venue scraper - using the page fixture outside prod
	if cfg.IsProduction() || cfg.Venue.URL != "" {
		logger.Info().Str("url", cfg.Venue.URL).Msg("using venue page scraper")
		httpScraper := scraper.NewHTTPScraper(api.NewHTTPClient(cfg.Venue.URL), cfg.Venue.UserAgent)
		c.Scraper = scraper.NewRateLimitedScraper(httpScraper, cfg.Venue.RequestsPerSecond, cfg.Venue.Burst)
	} else {
		logger.Info().Msg("using mock venue scraper")
		c.Scraper = scraper.NewScraperMock(config.GetResourcePath(config.VENUE_PAGE_RESOURCE))
	}

	if cfg.Recorder.SQLitePath != "" {
		sqliteRecorder, err := recorder.NewSQLiteRecorder(cfg.Recorder.SQLitePath, logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Recorder = sqliteRecorder
		c.closers = append(c.closers, sqliteRecorder.Close)
	} else {
		c.Recorder = recorder.NewNoopRecorder()
	}

	regressor, err := predictor.NewRegressor(cfg.Forecast.Neighbors)
	if err != nil {
		c.Close()
		return nil, err
	}
	defaultOpening, err := cfg.DefaultOpeningOffset()
	if err != nil {
		c.Close()
		return nil, err
	}
	policy := scheduler.Policy{
		PollInterval:   cfg.Schedule.PollInterval,
		ErrorInterval:  cfg.Schedule.ErrorInterval,
		DefaultOpening: defaultOpening,
	}

	files := window.NewFileStore(cfg.State.WindowPath)
	builder := window.NewBuilder(c.Store, cfg.Forecast.Weeks, logger)
	c.WindowRefresher = window.NewRefresher(builder, files, logger)
	c.StatusState = services.NewStatusState()

	c.ForecastService = services.NewForecastService(
		c.WindowRefresher,
		files,
		regressor,
		c.Store,
		c.Recorder,
		c.StatusState,
		cfg.Forecast.FrequencyMinutes,
		logger,
	)
	c.OccupancyTrackerService = services.NewOccupancyTrackerService(
		c.Scraper,
		c.Store,
		c.ForecastService,
		c.Recorder,
		c.StatusState,
		policy,
		c.Clock,
		logger,
	)

	c.ForecastHandler = handlers.NewForecastHandler(c.StatusState, c.ForecastService, c.Recorder, c.Clock, logger)
	c.MuxRouter = mux.NewRouter()
	c.Router = server.NewRouter(c.ForecastHandler, c.MuxRouter)
	c.OccupancyHttpServer = server.NewOccupancyHttpServer(cfg.HTTP.Addr, c.Router, c.MuxRouter, logger)

	return c, nil
}

func (c *Container) newStore(cfg *config.Config, logger zerolog.Logger) (dao.Store, error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case config.STORE_DRIVER_REDIS:
		logger.Info().Str("addr", cfg.Store.Redis.Addr).Msg("using redis store")
		client := db.NewGoRedisClientFromOptions(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB)
		c.closers = append(c.closers, client.Close)
		return redis.NewRedisStore(client, cfg.Store.Root), nil

	case config.STORE_DRIVER_FIREBASE:
		if !cfg.IsProduction() && cfg.Store.Firebase.ServiceAccountPath == "" {
			logger.Warn().Msg("no firebase service account, using in-memory store")
			return redis.NewRedisStore(db.NewMockRedisClient(), cfg.Store.Root), nil
		}
		account, err := firebase.LoadServiceAccount(cfg.Store.Firebase.ServiceAccountPath)
		if err != nil {
			return nil, err
		}
		source, err := firebase.NewServiceAccountTokenSource(account)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("database_url", cfg.Store.Firebase.DatabaseURL).Msg("using firebase store")
		return firebase.NewClient(cfg.Store.Firebase.DatabaseURL, cfg.Store.Root, source, cfg.Store.Firebase.RequestsPerSecond, logger), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// Close releases connections opened by the container.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
