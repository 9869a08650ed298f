package store

import (
	"time"

	"enscheck/internal/core/version"
	"enscheck/internal/platform/config"
)

// Config selects and tunes the sink backends
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures the postgres pool
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // boot pings before giving up
	PingTimeout    time.Duration // per ping
}

// CHConfig configures the clickhouse connection
type CHConfig struct {
	Enabled    bool
	URL        string
	ClientName string // role reported to the server, e.g. "cli"
	ClientTag  string // release tag reported to the server
}

// FromEnv reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* from root.
// A backend is enabled exactly when its DBURL is set
func FromEnv(root config.Conf, app, role string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	pgURL := pg.MayString("DBURL", "")
	chURL := ch.MayString("DBURL", "")

	return Config{
		AppName: app,
		PG: PGConfig{
			Enabled:        pgURL != "",
			URL:            pgURL,
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 4)),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 500),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 6),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			Enabled:    chURL != "",
			URL:        chURL,
			ClientName: role,
			ClientTag:  ch.MayString("CLIENT_TAG", version.Info().Version),
		},
	}
}
