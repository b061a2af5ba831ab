package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			Convey("Then all instruments register without panicking", func() {
				So(manager, ShouldNotBeNil)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				// Histograms and counters only show up after first use,
				// but gauges register eagerly through promauto.
				So(families, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When options carry zero values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRegistry(registry),
			)

			Convey("Then the defaults survive", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "vouch")
				So(manager.subsystem, ShouldEqual, "reputation")
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording engine events", func() {
			Convey("Then the helpers never panic", func() {
				So(RecordCheckinApplied, ShouldNotPanic)
				So(RecordCheckinSkipped, ShouldNotPanic)
				So(RecordCheckinDuplicate, ShouldNotPanic)
				So(RecordSnapGrant, ShouldNotPanic)
				So(func() { RecordBatchSize(8) }, ShouldNotPanic)
				So(func() { RecordAuditAction("DISPUTED") }, ShouldNotPanic)
				So(func() { RecordRecomputeDuration(12.5) }, ShouldNotPanic)
				So(func() { RecordTrustCalcDuration(3.2) }, ShouldNotPanic)
				So(func() { UpdateLedgerEntries(42) }, ShouldNotPanic)
				So(func() { UpdateTrackedProfiles("SEEKER", 7) }, ShouldNotPanic)
				So(RecordLeaderboardUpdate, ShouldNotPanic)
			})
		})

		Convey("When recording pipeline events", func() {
			Convey("Then the helpers never panic", func() {
				So(func() { UpdateQueueSize(10) }, ShouldNotPanic)
				So(func() { UpdateQueueCapacity(100) }, ShouldNotPanic)
				So(func() { UpdateQueueUtilization(0.1) }, ShouldNotPanic)
				So(RecordQueueEnqueue, ShouldNotPanic)
				So(func() { RecordQueueEnqueueError("full") }, ShouldNotPanic)
				So(RecordQueueDequeue, ShouldNotPanic)
				So(func() { UpdateWorkerCount(1) }, ShouldNotPanic)
				So(RecordWorkerError, ShouldNotPanic)
				So(func() { RecordApplyDuration(1.0) }, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP and system metrics", func() {
			Convey("Then the helpers never panic", func() {
				So(func() { RecordHTTPRequest("checkins", "POST", "200") }, ShouldNotPanic)
				So(func() { RecordHTTPRequestDuration("checkins", "POST", "200", 4.2) }, ShouldNotPanic)
				So(func() { UpdateSystemMemoryUsage(1 << 20) }, ShouldNotPanic)
				So(func() { UpdateSystemGoroutineCount(12) }, ShouldNotPanic)
			})
		})

		Convey("When gathering the exposed registry", func() {
			RecordCheckinApplied()

			families, err := GetRegistry().Gather()

			Convey("Then the recorded counters are present", func() {
				So(err, ShouldBeNil)
				names := make(map[string]struct{}, len(families))
				for _, f := range families {
					names[f.GetName()] = struct{}{}
				}
				_, ok := names["vouch_reputation_checkins_applied_total"]
				So(ok, ShouldBeTrue)
			})
		})
	})
}
