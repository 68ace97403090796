package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/crux/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			// Clear any existing environment variables
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.FeedURL, convey.ShouldEqual, "http://localhost:9090")
				convey.So(cfg.CacheBackend, convey.ShouldEqual, "memory")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "memory")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 300)
				convey.So(cfg.StaleFallback, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			// Set environment variables
			_ = os.Setenv("CRUX_ADDR", ":8080")
			_ = os.Setenv("CRUX_FEED_URL", "http://feed.internal:9100")
			_ = os.Setenv("CRUX_FEED_TIMEOUT_MS", "1500")
			_ = os.Setenv("CRUX_CACHE_TTL_SECONDS", "120")
			_ = os.Setenv("CRUX_HISTORY_MAX_LIMIT", "50")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.FeedURL, convey.ShouldEqual, "http://feed.internal:9100")
				convey.So(cfg.FeedTimeoutMS, convey.ShouldEqual, 1500)
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 120)
				convey.So(cfg.HistoryMaxLimit, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			// Create a temporary YAML config file
			yamlContent := `
addr: ":9090"
feed_url: "http://feed.local:9100"
cache_backend: "memory"
cache_ttl_seconds: 60
leaderboard_max_limit: 25
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			// Set the config file path
			_ = os.Setenv("CRUX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.FeedURL, convey.ShouldEqual, "http://feed.local:9100")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.LeaderboardMaxLimit, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When env vars override the YAML file", func() {
			yamlContent := `
addr: ":9090"
cache_ttl_seconds: 60
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CRUX_CONFIG", tmpFile)
			_ = os.Setenv("CRUX_CACHE_TTL_SECONDS", "90")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the env var wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 90)
			})
		})

		convey.Convey("When the cache backend is invalid", func() {
			clearConfigEnvVars()
			_ = os.Setenv("CRUX_CACHE_BACKEND", "memcache")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the postgres store has no database URL", func() {
			clearConfigEnvVars()
			_ = os.Setenv("CRUX_STORE_BACKEND", "postgres")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			clearConfigEnvVars()
			_ = os.Setenv("CRUX_CONFIG", "/nonexistent/crux.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	vars := []string{
		"CRUX_CONFIG",
		"CRUX_LOG_LEVEL",
		"CRUX_ADDR",
		"CRUX_FEED_URL",
		"CRUX_FEED_TIMEOUT_MS",
		"CRUX_FEED_REQUESTS_PER_MIN",
		"CRUX_CACHE_BACKEND",
		"CRUX_REDIS_ADDR",
		"CRUX_REDIS_PASSWORD",
		"CRUX_REDIS_DB",
		"CRUX_CACHE_TTL_SECONDS",
		"CRUX_STALE_FALLBACK",
		"CRUX_STORE_BACKEND",
		"CRUX_DATABASE_URL",
		"CRUX_DB_MIN_CONNS",
		"CRUX_DB_MAX_CONNS",
		"CRUX_HISTORY_MAX_LIMIT",
		"CRUX_LEADERBOARD_MAX_LIMIT",
		"CRUX_LEADERBOARD_MAX_WINDOW_DAYS",
		"CRUX_CALIBRATION_FILE",
	}
	for _, v := range vars {
		_ = os.Unsetenv(v)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "crux-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	_ = f.Close()
	return f.Name()
}
