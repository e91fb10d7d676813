package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"occupancy-forecaster/calendar"
	"occupancy-forecaster/scheduler"
)

// Defaults
const DEFAULT_ENVIRONMENT = "development"
const DEFAULT_TIMEZONE = calendar.DEFAULT_TIMEZONE
const DEFAULT_POLL_INTERVAL = scheduler.DEFAULT_POLL_INTERVAL
const DEFAULT_ERROR_INTERVAL = scheduler.DEFAULT_ERROR_INTERVAL
const DEFAULT_FORECAST_WEEKS = 4
const DEFAULT_FORECAST_NEIGHBORS = 5
const DEFAULT_FORECAST_FREQUENCY_MINUTES = 10
const DEFAULT_STORE_DRIVER = "firebase"
const DEFAULT_STORE_ROOT = "rs_data"
const DEFAULT_REDIS_ADDRESS = "redis:6379"
const DEFAULT_WINDOW_PATH = "data/window.json"
const DEFAULT_HTTP_ADDR = ":8080"
const DEFAULT_USER_AGENT = "Mozilla/5.0 (X11; Linux x86_64) occupancy-forecaster"

// CONFIG_PATH_ENV names the config file when --config is not given.
const CONFIG_PATH_ENV = "OCC_CONFIG"

// DEFAULT_OPENING_LAYOUT is the HH:MM form of schedule.default_opening.
const DEFAULT_OPENING_LAYOUT = "15:04"

const STORE_DRIVER_FIREBASE = "firebase"
const STORE_DRIVER_REDIS = "redis"

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const VENUE_PAGE_RESOURCE = "venue_page.html"

// Config holds all application configuration.
type Config struct {
	Environment string `yaml:"environment"`
	Timezone    string `yaml:"timezone"`
	Log         struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Venue struct {
		URL               string  `yaml:"url"`
		UserAgent         string  `yaml:"user_agent"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"venue"`
	Schedule struct {
		PollInterval   time.Duration `yaml:"poll_interval"`
		ErrorInterval  time.Duration `yaml:"error_interval"`
		DefaultOpening string        `yaml:"default_opening"`
	} `yaml:"schedule"`
	Forecast struct {
		Weeks            int `yaml:"weeks"`
		Neighbors        int `yaml:"neighbors"`
		FrequencyMinutes int `yaml:"frequency_minutes"`
	} `yaml:"forecast"`
	Store struct {
		Driver   string `yaml:"driver"`
		Root     string `yaml:"root"`
		Firebase struct {
			DatabaseURL        string  `yaml:"database_url"`
			ServiceAccountPath string  `yaml:"service_account_path"`
			RequestsPerSecond  float64 `yaml:"requests_per_second"`
		} `yaml:"firebase"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"store"`
	State struct {
		WindowPath string `yaml:"window_path"`
	} `yaml:"state"`
	Recorder struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"recorder"`
	HTTP struct {
		Enabled *bool  `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"http"`
}

// ResolvePath picks the config file: an explicit --config flag wins, then
// OCC_CONFIG, then the flag's default.
func ResolvePath(flagValue string, flagSet bool) string {
	if flagSet {
		return flagValue
	}
	if v := os.Getenv(CONFIG_PATH_ENV); v != "" {
		return v
	}
	return flagValue
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"ENVIRONMENT":              &c.Environment,
		"TZ_VENUE":                 &c.Timezone,
		"LOG_LEVEL":                &c.Log.Level,
		"VENUE_URL":                &c.Venue.URL,
		"VENUE_USER_AGENT":         &c.Venue.UserAgent,
		"STORE_DRIVER":             &c.Store.Driver,
		"STORE_ROOT":               &c.Store.Root,
		"FIREBASE_DATABASE_URL":    &c.Store.Firebase.DatabaseURL,
		"FIREBASE_SERVICE_ACCOUNT": &c.Store.Firebase.ServiceAccountPath,
		"REDIS_ADDR":               &c.Store.Redis.Addr,
		"REDIS_PASSWORD":           &c.Store.Redis.Password,
		"WINDOW_PATH":              &c.State.WindowPath,
		"SQLITE_PATH":              &c.Recorder.SQLitePath,
		"HTTP_ADDR":                &c.HTTP.Addr,
	}
	for env, field := range overrides {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}

	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("POLL_INTERVAL: %w", err)
		}
		c.Schedule.PollInterval = d
	}
	if v := os.Getenv("ERROR_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ERROR_INTERVAL: %w", err)
		}
		c.Schedule.ErrorInterval = d
	}
	if v := os.Getenv("HTTP_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HTTP_ENABLED: %w", err)
		}
		c.HTTP.Enabled = &enabled
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = DEFAULT_ENVIRONMENT
	}
	if c.Timezone == "" {
		c.Timezone = DEFAULT_TIMEZONE
	}
	if c.Venue.UserAgent == "" {
		c.Venue.UserAgent = DEFAULT_USER_AGENT
	}
	if c.Venue.RequestsPerSecond == 0 {
		c.Venue.RequestsPerSecond = 1
	}
	if c.Venue.Burst == 0 {
		c.Venue.Burst = 1
	}
	if c.Schedule.PollInterval == 0 {
		c.Schedule.PollInterval = DEFAULT_POLL_INTERVAL
	}
	if c.Schedule.ErrorInterval == 0 {
		c.Schedule.ErrorInterval = DEFAULT_ERROR_INTERVAL
	}
	if c.Schedule.DefaultOpening == "" {
		c.Schedule.DefaultOpening = time.Time{}.Add(scheduler.DEFAULT_OPENING).Format(DEFAULT_OPENING_LAYOUT)
	}
	if c.Forecast.Weeks == 0 {
		c.Forecast.Weeks = DEFAULT_FORECAST_WEEKS
	}
	if c.Forecast.Neighbors == 0 {
		c.Forecast.Neighbors = DEFAULT_FORECAST_NEIGHBORS
	}
	if c.Forecast.FrequencyMinutes == 0 {
		c.Forecast.FrequencyMinutes = DEFAULT_FORECAST_FREQUENCY_MINUTES
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DEFAULT_STORE_DRIVER
	}
	if c.Store.Root == "" {
		c.Store.Root = DEFAULT_STORE_ROOT
	}
	if c.Store.Redis.Addr == "" {
		c.Store.Redis.Addr = DEFAULT_REDIS_ADDRESS
	}
	if c.State.WindowPath == "" {
		c.State.WindowPath = DEFAULT_WINDOW_PATH
	}
	if c.HTTP.Enabled == nil {
		enabled := true
		c.HTTP.Enabled = &enabled
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DEFAULT_HTTP_ADDR
	}
}

// IsProduction reports whether real collaborators should be wired.
func (c *Config) IsProduction() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

// HTTPEnabled reports whether the status server should run.
func (c *Config) HTTPEnabled() bool {
	return c.HTTP.Enabled != nil && *c.HTTP.Enabled
}

// DefaultOpeningOffset parses schedule.default_opening as HH:MM.
func (c *Config) DefaultOpeningOffset() (time.Duration, error) {
	t, err := time.Parse(DEFAULT_OPENING_LAYOUT, c.Schedule.DefaultOpening)
	if err != nil {
		return 0, fmt.Errorf("schedule.default_opening: %w", err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.IsProduction() && c.Venue.URL == "" {
		return fmt.Errorf("venue.url is required")
	}
	if c.Schedule.PollInterval <= 0 || c.Schedule.ErrorInterval <= 0 {
		return fmt.Errorf("schedule intervals must be positive")
	}
	if _, err := c.DefaultOpeningOffset(); err != nil {
		return err
	}
	if c.Forecast.Weeks < 1 {
		return fmt.Errorf("forecast.weeks must be at least 1")
	}
	if c.Forecast.Neighbors < 1 {
		return fmt.Errorf("forecast.neighbors must be at least 1")
	}
	if c.Forecast.FrequencyMinutes < 1 {
		return fmt.Errorf("forecast.frequency_minutes must be at least 1")
	}
	if c.Venue.RequestsPerSecond <= 0 {
		return fmt.Errorf("venue.requests_per_second must be positive")
	}
	switch strings.ToLower(c.Store.Driver) {
	case STORE_DRIVER_FIREBASE:
		if c.IsProduction() && (c.Store.Firebase.DatabaseURL == "" || c.Store.Firebase.ServiceAccountPath == "") {
			return fmt.Errorf("store.firebase.database_url and store.firebase.service_account_path are required")
		}
	case STORE_DRIVER_REDIS:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", STORE_DRIVER_FIREBASE, STORE_DRIVER_REDIS, c.Store.Driver)
	}
	return nil
}

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}
	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}
	return wd
}

func GetResourcePath(resourceFile string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resourceFile)
}
