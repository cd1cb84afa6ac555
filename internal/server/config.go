package server

import (
	"time"

	"github.com/caarlos0/env/v6"
)

// Config lists the tunable parameters for the HTTP server.
type Config struct {
	// Address to bind, host included so the server can stay loopback-only
	// behind a reverse proxy.
	Host string `env:"GEOPORTAL_HOST" envDefault:"127.0.0.1"`
	Port int    `env:"GEOPORTAL_PORT" envDefault:"8080"`

	// Path of the SQLite search-location log. Empty disables logging.
	GeologPath string `env:"GEOPORTAL_GEOLOG_DB" envDefault:"geoportal_searches.db"`

	// Interval between scheduled snapshot refreshes.
	RefreshInterval time.Duration `env:"GEOPORTAL_REFRESH_INTERVAL" envDefault:"1h"`

	// Requests per minute allowed per client IP.
	RateLimit int `env:"GEOPORTAL_RATE_LIMIT" envDefault:"20"`

	// Nominatim instance used to geocode free-text locations.
	NominatimServer string `env:"GEOPORTAL_NOMINATIM" envDefault:"https://nominatim.openstreetmap.org/"`

	// Cap applied to the nearby attribute list.
	NearbyLimit int `env:"GEOPORTAL_NEARBY_LIMIT" envDefault:"50"`
}

// LoadConfig derives the server configuration from environment variables,
// falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
