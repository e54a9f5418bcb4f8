package config_test

import (
	"testing"

	"github.com/okian/triage/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.ActivityQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 0)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.ShardCount, convey.ShouldEqual, 8)
			convey.So(cfg.TopK, convey.ShouldEqual, 3)
			convey.So(cfg.ResolvedWeight, convey.ShouldEqual, 0.7)
			convey.So(cfg.CommitWeight, convey.ShouldEqual, 0.3)
			convey.So(cfg.Saturation, convey.ShouldEqual, 5.0)
		})
	})
}
