package leveling_test

import (
	"math"
	"testing"

	"github.com/okian/vouch/internal/domain/leveling"
	"github.com/okian/vouch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLevelFromCounts(t *testing.T) {
	Convey("Given the default achievement rules", t, func() {
		rules := leveling.DefaultRules()

		Convey("When there are no samples", func() {
			Convey("Then the level is 0", func() {
				So(leveling.LevelFromCounts(rules, 0, 0), ShouldEqual, 0)
			})
		})

		Convey("When counts satisfy the first tier exactly", func() {
			// 4 samples at 100% clears {4, 80}.
			Convey("Then the level is 1", func() {
				So(leveling.LevelFromCounts(rules, 4, 0), ShouldEqual, 1)
			})
		})

		Convey("When the percent falls short of the first tier", func() {
			// 3 yes / 1 no = 75% < 80%.
			Convey("Then the level is 0", func() {
				So(leveling.LevelFromCounts(rules, 3, 1), ShouldEqual, 0)
			})
		})

		Convey("When counts satisfy the second tier", func() {
			// 11 yes / 1 no = 12 samples at 91.7%.
			Convey("Then the level is 2", func() {
				So(leveling.LevelFromCounts(rules, 11, 1), ShouldEqual, 2)
			})
		})

		Convey("When counts satisfy the top tier", func() {
			Convey("Then the level is 5", func() {
				So(leveling.LevelFromCounts(rules, 100, 0), ShouldEqual, 5)
			})
		})

		Convey("When the sample count clears a later tier but the percent only clears an earlier one", func() {
			// 48 yes / 8 no = 56 samples at 85.7%: enough samples for tier 4,
			// but the percent only clears tier 2.
			Convey("Then the highest satisfied tier wins", func() {
				So(leveling.LevelFromCounts(rules, 48, 8), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a non-monotonic rule set", t, func() {
		rules := []model.LevelRule{
			{MinSamples: 10, MinPercent: 95},
			{MinSamples: 2, MinPercent: 50},
			{MinSamples: 4, MinPercent: 60},
			{MinSamples: 100, MinPercent: 99},
			{MinSamples: 200, MinPercent: 99},
		}

		Convey("When counts satisfy tier 3 but not tier 1", func() {
			// 5 yes / 2 no = 7 samples at 71.4%.
			Convey("Then tiers are evaluated independently", func() {
				So(leveling.LevelFromCounts(rules, 5, 2), ShouldEqual, 3)
			})
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given rule lists of various shapes", t, func() {
		Convey("When the list has the wrong length", func() {
			_, ok := leveling.Normalize([]model.LevelRule{{MinSamples: 1, MinPercent: 50}})

			Convey("Then normalization fails", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a percent is not finite", func() {
			rules := leveling.DefaultRules()
			rules[2].MinPercent = math.NaN()
			_, ok := leveling.Normalize(rules)

			Convey("Then normalization fails", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When entries are out of range", func() {
			rules := leveling.DefaultRules()
			rules[0].MinSamples = -3
			rules[1].MinPercent = 250
			out, ok := leveling.Normalize(rules)

			Convey("Then they are coerced into range", func() {
				So(ok, ShouldBeTrue)
				So(out[0].MinSamples, ShouldEqual, 0)
				So(out[1].MinPercent, ShouldEqual, 100)
			})
		})

		Convey("When the input is valid", func() {
			in := leveling.DefaultRules()
			out, ok := leveling.Normalize(in)

			Convey("Then a copy is returned", func() {
				So(ok, ShouldBeTrue)
				So(out, ShouldResemble, in)
				out[0].MinSamples = 999
				So(in[0].MinSamples, ShouldEqual, 4)
			})
		})
	})
}
