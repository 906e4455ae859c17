package config

import (
	"net/url"
	"strings"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// Port the HTTP server listens on
	Port int `env:"PORT" envDefault:"5250"`

	// ServiceKey authenticates against the government open-data endpoints.
	// Normalized on load; an empty key fails each market request, not startup,
	// so the rest of the API stays usable.
	ServiceKey string `env:"MOLIT_SERVICE_KEY"`

	// UpstreamTimeoutSeconds bounds every single upstream fetch
	UpstreamTimeoutSeconds int `env:"UPSTREAM_TIMEOUT_SECONDS" envDefault:"15"`

	// PageSize requested from the government endpoints per month
	PageSize int `env:"PAGE_SIZE" envDefault:"1000"`

	// RecentLimit caps the transaction list returned for display
	RecentLimit int `env:"RECENT_LIMIT" envDefault:"30"`

	// DBPath locates the sqlite file holding market snapshots
	DBPath string `env:"DB_PATH" envDefault:"database/lifeplanner.db"`

	// WatchRegions are region codes whose snapshots are refreshed on schedule
	WatchRegions []string `env:"WATCH_REGIONS" envSeparator:","`

	// SnapshotCron is the refresh schedule for watched regions
	SnapshotCron string `env:"SNAPSHOT_CRON" envDefault:"0 6 * * *"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.ServiceKey = NormalizeServiceKey(cfg.ServiceKey)
	return cfg, nil
}

// NormalizeServiceKey strips whitespace a key picks up when pasted into env
// files and decodes keys that were issued pre-encoded, so the key can be
// placed into a query string exactly once.
func NormalizeServiceKey(key string) string {
	key = strings.Join(strings.Fields(key), "")
	if key == "" {
		return ""
	}
	if strings.Contains(key, "%") {
		if decoded, err := url.QueryUnescape(key); err == nil && decoded != "" {
			return decoded
		}
	}
	return key
}
