// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// FeedURL is the base URL of the upstream game feed provider.
	FeedURL string `koanf:"feed_url"`

	// FeedTimeoutMS bounds a single feed request, in milliseconds.
	FeedTimeoutMS int `koanf:"feed_timeout_ms"`

	// FeedRequestsPerMin rate-limits outbound feed traffic.
	FeedRequestsPerMin int `koanf:"feed_requests_per_min"`

	// CacheBackend selects the moment cache: memory or redis.
	CacheBackend string `koanf:"cache_backend"`

	// RedisAddr, RedisPassword and RedisDB configure the redis cache backend.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// CacheTTLSeconds is the moment freshness window.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// StaleFallback serves a stale cached moment when the upstream is down.
	StaleFallback bool `koanf:"stale_fallback"`

	// StoreBackend selects the moment store: memory or postgres.
	StoreBackend string `koanf:"store_backend"`

	// DatabaseURL configures the postgres store backend.
	DatabaseURL string `koanf:"database_url"`

	// DBMinConns and DBMaxConns bound the postgres connection pool.
	DBMinConns int `koanf:"db_min_conns"`
	DBMaxConns int `koanf:"db_max_conns"`

	// HistoryMaxLimit caps GET /history?limit.
	HistoryMaxLimit int `koanf:"history_max_limit"`

	// LeaderboardMaxLimit caps GET /leaderboard?limit.
	LeaderboardMaxLimit int `koanf:"leaderboard_max_limit"`

	// LeaderboardMaxWindowDays caps GET /leaderboard?window_days.
	LeaderboardMaxWindowDays int `koanf:"leaderboard_max_window_days"`

	// CalibrationFile optionally overrides the built-in calibration table.
	CalibrationFile string `koanf:"calibration_file"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		Addr:                     ":9080",
		FeedURL:                  "http://localhost:9090",
		FeedTimeoutMS:            3000,
		FeedRequestsPerMin:       600,
		CacheBackend:             "memory",
		RedisAddr:                "localhost:6379",
		CacheTTLSeconds:          300,
		StaleFallback:            true,
		StoreBackend:             "memory",
		DBMinConns:               2,
		DBMaxConns:               10,
		HistoryMaxLimit:          100,
		LeaderboardMaxLimit:      100,
		LeaderboardMaxWindowDays: 30,
	}
}
