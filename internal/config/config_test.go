package config_test

import (
	"testing"

	"github.com/okian/crux/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.FeedTimeoutMS, convey.ShouldEqual, 3000)
			convey.So(cfg.FeedRequestsPerMin, convey.ShouldEqual, 600)
			convey.So(cfg.CacheBackend, convey.ShouldEqual, "memory")
			convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 300)
			convey.So(cfg.StaleFallback, convey.ShouldBeTrue)
			convey.So(cfg.StoreBackend, convey.ShouldEqual, "memory")
			convey.So(cfg.LeaderboardMaxWindowDays, convey.ShouldEqual, 30)
		})
	})
}
