package trust_test

import (
	"testing"
	"time"

	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/internal/domain/trust"
	. "github.com/smartystreets/goconvey/convey"
)

func entry(retainerID string, value model.CheckinValue, created time.Time) model.BadgeCheckin {
	return model.BadgeCheckin{
		SeekerID:   "seeker-1",
		RetainerID: retainerID,
		TargetRole: model.RoleSeeker,
		TargetID:   "seeker-1",
		Value:      value,
		Status:     model.StatusActive,
		CreatedAt:  created,
	}
}

func TestWindowPercent(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cutoff := now.AddDate(0, -12, 0)

	Convey("Given ledger entries from several counterparts", t, func() {
		entries := []model.BadgeCheckin{
			// Counterpart A: 1 yes, 1 no = 50%.
			entry("retainer-a", model.ValueYes, now.AddDate(0, -1, 0)),
			entry("retainer-a", model.ValueNo, now.AddDate(0, -2, 0)),
			// Counterpart B: 4 yes = 100%.
			entry("retainer-b", model.ValueYes, now.AddDate(0, -1, 0)),
			entry("retainer-b", model.ValueYes, now.AddDate(0, -2, 0)),
			entry("retainer-b", model.ValueYes, now.AddDate(0, -3, 0)),
			entry("retainer-b", model.ValueYes, now.AddDate(0, -4, 0)),
		}

		Convey("When computing the window percent", func() {
			percent, yes, no, ok := trust.WindowPercent(entries, model.RoleSeeker, cutoff)

			Convey("Then counterpart buckets average equally regardless of volume", func() {
				So(ok, ShouldBeTrue)
				So(percent, ShouldAlmostEqual, 75.0, 0.0001)
				So(yes, ShouldEqual, 5)
				So(no, ShouldEqual, 1)
			})
		})

		Convey("When entries fall outside the window", func() {
			stale := []model.BadgeCheckin{
				entry("retainer-a", model.ValueYes, now.AddDate(0, -13, 0)),
			}
			_, _, _, ok := trust.WindowPercent(stale, model.RoleSeeker, cutoff)

			Convey("Then the badge has no qualifying data", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When an entry carries an override value", func() {
			overridden := []model.BadgeCheckin{
				entry("retainer-a", model.ValueNo, now.AddDate(0, -1, 0)),
			}
			overridden[0].Status = model.StatusOverridden
			overridden[0].OverrideValue = model.ValueYes
			percent, yes, no, ok := trust.WindowPercent(overridden, model.RoleSeeker, cutoff)

			Convey("Then the override is what counts", func() {
				So(ok, ShouldBeTrue)
				So(percent, ShouldEqual, 100)
				So(yes, ShouldEqual, 1)
				So(no, ShouldEqual, 0)
			})
		})
	})
}

func TestLifetimePercent(t *testing.T) {
	Convey("Given progress counts", t, func() {
		Convey("When the badge has samples", func() {
			percent, ok := trust.LifetimePercent(model.BadgeProgress{YesCount: 3, NoCount: 1})

			Convey("Then the lifetime ratio is returned", func() {
				So(ok, ShouldBeTrue)
				So(percent, ShouldEqual, 75)
			})
		})

		Convey("When the badge has no samples", func() {
			_, ok := trust.LifetimePercent(model.BadgeProgress{})

			Convey("Then it is excluded", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestGroupScore(t *testing.T) {
	Convey("Given badge scores", t, func() {
		Convey("When badges carry different weights", func() {
			got := trust.GroupScore([]trust.BadgeScore{
				{Percent: 100, Weight: 3},
				{Percent: 50, Weight: 1},
			})

			Convey("Then the average is weight-normalized", func() {
				So(got, ShouldNotBeNil)
				So(*got, ShouldAlmostEqual, 87.5, 0.0001)
			})
		})

		Convey("When the group is empty", func() {
			Convey("Then the score is nil", func() {
				So(trust.GroupScore(nil), ShouldBeNil)
			})
		})

		Convey("When every weight is non-positive", func() {
			got := trust.GroupScore([]trust.BadgeScore{{Percent: 90, Weight: 0}})

			Convey("Then the score is nil", func() {
				So(got, ShouldBeNil)
			})
		})
	})
}

func TestBlend(t *testing.T) {
	exp := 80.0
	growth := 60.0

	Convey("Given group scores", t, func() {
		Convey("When both groups have data", func() {
			got := trust.Blend(&exp, &growth, 0.65, 0.35)

			Convey("Then the configured split applies", func() {
				So(got, ShouldNotBeNil)
				So(*got, ShouldAlmostEqual, 0.65*80+0.35*60, 0.0001)
			})
		})

		Convey("When only one group has data", func() {
			got := trust.Blend(&exp, nil, 0.65, 0.35)

			Convey("Then its score passes through unchanged", func() {
				So(got, ShouldNotBeNil)
				So(*got, ShouldAlmostEqual, 80, 0.0001)
			})
		})

		Convey("When neither group has data", func() {
			Convey("Then the blend is nil", func() {
				So(trust.Blend(nil, nil, 0.65, 0.35), ShouldBeNil)
			})
		})

		Convey("When the configured weights are degenerate", func() {
			got := trust.Blend(&exp, &growth, 0, 0)

			Convey("Then a plain average is the fallback", func() {
				So(got, ShouldNotBeNil)
				So(*got, ShouldAlmostEqual, 70, 0.0001)
			})
		})
	})
}

func TestApplyPenalty(t *testing.T) {
	Convey("Given penalty inputs", t, func() {
		Convey("Then the result stays within [0, 100]", func() {
			So(trust.ApplyPenalty(80, 15), ShouldEqual, 65)
			So(trust.ApplyPenalty(10, 50), ShouldEqual, 0)
			So(trust.ApplyPenalty(120, 0), ShouldEqual, 100)
		})
	})
}

func TestWeights(t *testing.T) {
	Convey("Given weight components", t, func() {
		w := trust.Weights{Badge: 2, Kind: 3, Multiplier: 1.7}

		Convey("Then the contribution is their product", func() {
			So(w.Contribution(), ShouldAlmostEqual, 10.2, 0.0001)
		})
	})
}
