package period_test

import (
	"testing"
	"time"

	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/internal/domain/period"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Given reference times", t, func() {
		Convey("When deriving a weekly key", func() {
			// 2025-03-05 falls in ISO week 10 of 2025.
			key := period.Key(model.CadenceWeekly, time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC))

			Convey("Then it uses the ISO week format", func() {
				So(key, ShouldEqual, "2025-W10")
			})
		})

		Convey("When the ISO week belongs to the previous year", func() {
			// 2021-01-01 is a Friday in ISO week 53 of 2020.
			key := period.Key(model.CadenceWeekly, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))

			Convey("Then the ISO year wins over the calendar year", func() {
				So(key, ShouldEqual, "2020-W53")
			})
		})

		Convey("When deriving a monthly key", func() {
			key := period.Key(model.CadenceMonthly, time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC))

			Convey("Then it uses the year-month format", func() {
				So(key, ShouldEqual, "2025-03")
			})
		})

		Convey("When deriving a once key", func() {
			a := period.Key(model.CadenceOnce, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
			b := period.Key(model.CadenceOnce, time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC))

			Convey("Then every time maps to the same bucket", func() {
				So(a, ShouldEqual, "once")
				So(b, ShouldEqual, a)
			})
		})
	})
}

func TestValidKey(t *testing.T) {
	Convey("Given candidate keys", t, func() {
		Convey("When validating weekly keys", func() {
			So(period.ValidKey(model.CadenceWeekly, "2025-W10"), ShouldBeTrue)
			So(period.ValidKey(model.CadenceWeekly, "2025-10"), ShouldBeFalse)
			So(period.ValidKey(model.CadenceWeekly, "2025-W1"), ShouldBeFalse)
			So(period.ValidKey(model.CadenceWeekly, ""), ShouldBeFalse)
		})

		Convey("When validating monthly keys", func() {
			So(period.ValidKey(model.CadenceMonthly, "2025-03"), ShouldBeTrue)
			So(period.ValidKey(model.CadenceMonthly, "2025-W03"), ShouldBeFalse)
		})

		Convey("When validating once keys", func() {
			So(period.ValidKey(model.CadenceOnce, "once"), ShouldBeTrue)
			So(period.ValidKey(model.CadenceOnce, ""), ShouldBeFalse)
		})
	})
}

func TestDefaultCadence(t *testing.T) {
	Convey("Given each badge kind", t, func() {
		Convey("Then the default cadence follows the kind", func() {
			So(period.DefaultCadence(model.KindSnap), ShouldEqual, model.CadenceOnce)
			So(period.DefaultCadence(model.KindChecker), ShouldEqual, model.CadenceMonthly)
			So(period.DefaultCadence(model.KindBackground), ShouldEqual, model.CadenceWeekly)
			So(period.DefaultCadence(model.KindSelectable), ShouldEqual, model.CadenceWeekly)
		})
	})
}
