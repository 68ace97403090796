package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			registryOpt := WithPrometheusRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test-namespace")
				So(manager.subsystem, ShouldEqual, "test-subsystem")
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording pipeline activity", func() {
			Convey("Then the recorders should not panic", func() {
				So(func() { RecordCompute(67.4, "high", 12.5) }, ShouldNotPanic)
				So(func() { RecordComputeError("upstream_unavailable") }, ShouldNotPanic)
				So(func() { RecordCacheHit() }, ShouldNotPanic)
				So(func() { RecordCacheMiss() }, ShouldNotPanic)
				So(func() { RecordCacheStaleFallback() }, ShouldNotPanic)
				So(func() { RecordCacheEviction() }, ShouldNotPanic)
				So(func() { UpdateCacheEntries(3) }, ShouldNotPanic)
				So(func() { RecordFeedRequest(4.2) }, ShouldNotPanic)
				So(func() { RecordFeedTimeout() }, ShouldNotPanic)
				So(func() { RecordFeedRetry() }, ShouldNotPanic)
				So(func() { RecordMomentAppend() }, ShouldNotPanic)
				So(func() { RecordMomentAppendError() }, ShouldNotPanic)
				So(func() { RecordStoreQueryLatency(0.3) }, ShouldNotPanic)
				So(func() { UpdateMomentsTotal(42) }, ShouldNotPanic)
				So(func() { RecordHTTPRequest("compute", "POST", "200") }, ShouldNotPanic)
				So(func() { RecordHTTPRequestDuration("compute", "POST", "200", 9.1) }, ShouldNotPanic)
			})
		})

		Convey("When fetching the registry", func() {
			Convey("Then it should be non-nil", func() {
				So(GetRegistry(), ShouldNotBeNil)
			})
		})
	})
}
