package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/vouch/internal/adapters/mq/queue"
	"github.com/okian/vouch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory submission queue", t, func() {
		Convey("When enqueuing within capacity", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(2))

			ok := q.Enqueue(ctx, queue.Submission{BadgeID: "seeker_reliable"})

			Convey("Then the submission is accepted", func() {
				So(ok, ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When the queue is full", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(1))
			So(q.Enqueue(ctx, queue.Submission{}), ShouldBeTrue)

			ok := q.Enqueue(ctx, queue.Submission{})

			Convey("Then enqueue reports backpressure", func() {
				So(ok, ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When dequeuing submissions", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(4))
			sub := queue.Submission{BadgeID: "seeker_reliable", TargetRole: model.RoleSeeker, TargetID: "s1"}
			So(q.Enqueue(ctx, sub), ShouldBeTrue)

			out := q.Dequeue(ctx)

			Convey("Then submissions arrive in order", func() {
				select {
				case got := <-out:
					So(got, ShouldResemble, sub)
				case <-time.After(time.Second):
					t.Fatal("timed out waiting for dequeue")
				}
			})
		})

		Convey("When the queue is closed", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(1))
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue is refused and the state is visible", func() {
				So(q.Enqueue(ctx, queue.Submission{}), ShouldBeFalse)
				So(q.IsClosed(), ShouldBeTrue)
			})

			Convey("Then closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})

			Convey("Then the dequeue channel drains and closes", func() {
				out := q.Dequeue(ctx)
				select {
				case _, open := <-out:
					So(open, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("timed out waiting for channel close")
				}
			})
		})
	})
}
