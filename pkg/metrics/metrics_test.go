package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with the hiscores namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.cyclesTotal.WithLabelValues(ResultOK).Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "hiscores_scraper_cycles_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithMetricPrefix("x_"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.snapshotRecords.Set(3)

			Convey("Then names and constant labels should follow the options", func() {
				expected := `
# HELP test_unit_x_snapshot_records Number of records in the latest snapshot
# TYPE test_unit_x_snapshot_records gauge
test_unit_x_snapshot_records{env="test"} 3
`
				err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_unit_x_snapshot_records")
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording cycles", func() {
			before := testutil.ToFloat64(current().cyclesTotal.WithLabelValues(ResultAborted))
			RecordCycle(ResultAborted, 1500*time.Millisecond)

			Convey("Then the result counter increments", func() {
				after := testutil.ToFloat64(current().cyclesTotal.WithLabelValues(ResultAborted))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording scrape failures", func() {
			before := testutil.ToFloat64(current().fetchFailures.WithLabelValues("status"))
			RecordFetchFailure("status")
			RecordFetchFailure("status")

			Convey("Then they are counted by reason", func() {
				after := testutil.ToFloat64(current().fetchFailures.WithLabelValues("status"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When updating the snapshot gauges", func() {
			at := time.Unix(1_700_000_000, 0)
			UpdateSnapshot(7, at)

			Convey("Then size and time are exposed", func() {
				So(testutil.ToFloat64(current().snapshotRecords), ShouldEqual, 7)
				So(testutil.ToFloat64(current().snapshotLastUnix), ShouldEqual, 1_700_000_000)
			})
		})

		Convey("When recording everything else", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordSubject("students")
					RecordRecordKept("students")
					RecordFetchLatency(120)
					RecordExtractFailure("table_not_found")
					RecordMalformedLine("teachers")
					RecordSnapshotWriteLatency(2)
					RecordSnapshotWriteError()
					RecordPublish(ResultFailed)
					RecordHTTPRequest("hiscores", "GET", "200")
					RecordHTTPRequestDuration("hiscores", "GET", "200", 1.5)
					RecordErrorByComponent("fetcher", "status")
					RecordErrorByType("status", "medium")
					RecordErrorByEndpoint("rank", "GET", "not_found")
					RecordErrorLatency("http", "not_found", 0.5)
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(10)
					RecordSystemGCPauseTime(0.2)
				}, ShouldNotPanic)
			})
		})

		Convey("When asking for the registry", func() {
			Convey("Then the custom registry is returned", func() {
				So(GetRegistry(), ShouldEqual, customRegistry.Load())
			})
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global metrics reconfigured with a namespace and prefix", t, func() {
		previous := GetRegistry()
		Configure(WithNamespace("scholar"), WithSubsystem("hs"), WithMetricPrefix("app_"))
		defer Configure()

		RecordCycle(ResultOK, time.Millisecond)

		Convey("Then the recorders write to a fresh registry under the new names", func() {
			So(GetRegistry(), ShouldNotEqual, previous)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(names, ShouldContain, "scholar_hs_app_cycles_total")
			So(names, ShouldNotContain, "hiscores_scraper_cycles_total")
			So(testutil.ToFloat64(current().cyclesTotal.WithLabelValues(ResultOK)), ShouldEqual, 1)
		})
	})
}
