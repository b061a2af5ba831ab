package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/vouch/internal/adapters/mq/queue"
	"github.com/okian/vouch/internal/adapters/mq/worker"
	"github.com/okian/vouch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// recordingApplier captures applied submissions for assertions.
type recordingApplier struct {
	mu      sync.Mutex
	applied []worker.Submission
	fail    bool
}

func (a *recordingApplier) ApplySubmission(_ context.Context, s worker.Submission) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return errors.New("boom")
	}
	a.applied = append(a.applied, s)
	return nil
}

func (a *recordingApplier) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.applied)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestWorker(t *testing.T) {
	Convey("Given a worker over a queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		applier := &recordingApplier{}

		Convey("When submissions are enqueued", func() {
			w := worker.NewWorker(q, applier, worker.WithName("test-worker"))
			go w.Run(ctx)

			So(q.Enqueue(ctx, worker.Submission{BadgeID: "seeker_reliable", TargetID: "s1"}), ShouldBeTrue)
			So(q.Enqueue(ctx, worker.Submission{BadgeID: "seeker_punctual", TargetID: "s1"}), ShouldBeTrue)

			Convey("Then the worker applies them", func() {
				So(waitFor(func() bool { return applier.count() == 2 }), ShouldBeTrue)

				So(w.Shutdown(ctx), ShouldBeNil)
			})
		})

		Convey("When the applier rejects a submission", func() {
			applier.fail = true
			w := worker.NewWorker(q, applier)
			go w.Run(ctx)

			So(q.Enqueue(ctx, worker.Submission{BadgeID: "seeker_reliable"}), ShouldBeTrue)

			Convey("Then the worker logs and keeps running", func() {
				So(waitFor(func() bool { return q.Len(ctx) == 0 }), ShouldBeTrue)
				So(w.Shutdown(ctx), ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a worker pool", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		applier := &recordingApplier{}

		Convey("When constructed with a count below one", func() {
			p := worker.NewPool(0, q, applier)

			Convey("Then it collapses to a single worker", func() {
				So(p.Size(), ShouldEqual, 1)
			})
		})

		Convey("When started and fed submissions", func() {
			p := worker.NewPool(1, q, applier)
			p.Start(ctx)

			for i := 0; i < 5; i++ {
				So(q.Enqueue(ctx, worker.Submission{TargetID: "s1"}), ShouldBeTrue)
			}

			Convey("Then all submissions are applied before Stop returns", func() {
				So(waitFor(func() bool { return applier.count() == 5 }), ShouldBeTrue)
				p.Stop()
			})
		})
	})
}
