package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is applied by envconfig when expanding unnamed fields.
	EnvPrefix = "cartsync"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv      = "CARTSYNC_APP_ENV"
	EnvAPIBaseURL  = "CARTSYNC_API_BASE_URL"
	EnvHTTPTimeout = "CARTSYNC_HTTP_TIMEOUT"
)

type Config struct {
	App  AppConfig
	API  APIConfig
	Cart CartConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTSYNC_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"CARTSYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTSYNC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL     string        `envconfig:"CARTSYNC_API_BASE_URL" required:"true"`
	HTTPTimeout time.Duration `envconfig:"CARTSYNC_HTTP_TIMEOUT" default:"30s"`
	PageLimit   int           `envconfig:"CARTSYNC_PAGE_LIMIT" default:"25"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", EnvAPIBaseURL, a.BaseURL)
	}
	if a.HTTPTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvHTTPTimeout)
	}
	return nil
}

type CartConfig struct {
	// PropagateFetchErrors surfaces fetch failures to callers instead of
	// swallowing them and keeping stale items. Mutation failures always
	// propagate regardless of this flag.
	PropagateFetchErrors bool `envconfig:"CARTSYNC_PROPAGATE_FETCH_ERRORS" default:"false"`
}
