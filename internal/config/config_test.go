package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/hiscores/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.BaseURL, convey.ShouldEqual, "https://scholar.google.com/citations")
			convey.So(cfg.UserAgent, convey.ShouldEqual, config.DefaultUserAgent)
			convey.So(cfg.RosterDir, convey.ShouldEqual, "players")
			convey.So(cfg.Groups, convey.ShouldResemble, []string{"students", "teachers"})
			convey.So(cfg.SnapshotPath, convey.ShouldEqual, "hiscores.json")
			convey.So(cfg.Interval, convey.ShouldEqual, 72*time.Hour)
			convey.So(cfg.NumericFailure, convey.ShouldEqual, config.NumericDiscard)
			convey.So(cfg.ExtractMode, convey.ShouldEqual, config.ExtractPositional)
			convey.So(cfg.PublishEnabled, convey.ShouldBeFalse)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "hiscores")
			convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "scraper")
			convey.So(cfg.MetricsPrefix, convey.ShouldBeEmpty)
		})

		convey.Convey("And the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
