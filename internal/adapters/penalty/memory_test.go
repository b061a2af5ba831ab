package penalty_test

import (
	"context"
	"testing"

	"github.com/okian/vouch/internal/adapters/penalty"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryProvider(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory penalty registry", t, func() {
		p := penalty.NewMemoryProvider()

		Convey("When no penalty is recorded", func() {
			Convey("Then the lookup returns zero", func() {
				So(p.ActiveBadExitPenaltyPercent(ctx, "s1"), ShouldEqual, 0)
			})
		})

		Convey("When a penalty is set", func() {
			p.Set(ctx, "s1", 15)

			Convey("Then it is returned for that seeker only", func() {
				So(p.ActiveBadExitPenaltyPercent(ctx, "s1"), ShouldEqual, 15)
				So(p.ActiveBadExitPenaltyPercent(ctx, "s2"), ShouldEqual, 0)
			})

			Convey("When cleared with a non-positive value", func() {
				p.Set(ctx, "s1", 0)

				Convey("Then the penalty is gone", func() {
					So(p.ActiveBadExitPenaltyPercent(ctx, "s1"), ShouldEqual, 0)
				})
			})
		})
	})
}
