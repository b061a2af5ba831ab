package catalog_test

import (
	"testing"

	"github.com/okian/vouch/internal/domain/catalog"
	"github.com/okian/vouch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		c := catalog.New()

		Convey("Then it holds the full marketplace badge set", func() {
			So(c.Len(), ShouldEqual, 24)
			So(len(c.ForRole(model.RoleSeeker)), ShouldEqual, 12)
			So(len(c.ForRole(model.RoleRetainer)), ShouldEqual, 12)
		})

		Convey("When looking up a known badge", func() {
			def, ok := c.Badge("seeker_reliable")

			Convey("Then the entry is normalized", func() {
				So(ok, ShouldBeTrue)
				So(def.Role, ShouldEqual, model.RoleSeeker)
				So(def.Verifier, ShouldEqual, model.RoleRetainer)
				So(def.Cadence, ShouldEqual, model.CadenceWeekly)
			})
		})

		Convey("When looking up a SNAP badge", func() {
			def, ok := c.Badge("seeker_identity_verified")

			Convey("Then it defaults to the once cadence and carries its declared weight", func() {
				So(ok, ShouldBeTrue)
				So(def.Cadence, ShouldEqual, model.CadenceOnce)
				So(def.Weight, ShouldEqual, 2)
			})
		})

		Convey("When looking up a CHECKER badge", func() {
			def, ok := c.Badge("retainer_fair_billing")

			Convey("Then it defaults to the monthly cadence", func() {
				So(ok, ShouldBeTrue)
				So(def.Cadence, ShouldEqual, model.CadenceMonthly)
			})
		})

		Convey("When listing by role and kind", func() {
			bg := c.ForRoleKind(model.RoleSeeker, model.KindBackground)
			sel := c.ForRoleKind(model.RoleSeeker, model.KindSelectable)

			Convey("Then the listings are complete and kind-scoped", func() {
				So(len(bg), ShouldEqual, 5)
				So(len(sel), ShouldEqual, 5)
				for _, def := range bg {
					So(def.Kind, ShouldEqual, model.KindBackground)
				}
			})
		})

		Convey("When looking up an unknown badge", func() {
			_, ok := c.Badge("nope")

			Convey("Then the lookup misses", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given a catalog with custom definitions", t, func() {
		c := catalog.New(catalog.WithBadges([]model.BadgeDefinition{
			{ID: "custom", Role: model.RoleSeeker, Kind: model.KindBackground},
			{ID: "custom", Role: model.RoleSeeker, Kind: model.KindSelectable}, // duplicate id
			{ID: "", Role: model.RoleSeeker, Kind: model.KindBackground},       // invalid
			{ID: "bad_role", Role: model.Role("OTHER"), Kind: model.KindBackground},
		}))

		Convey("Then invalid and duplicate entries are dropped", func() {
			So(c.Len(), ShouldEqual, 1)
			def, ok := c.Badge("custom")
			So(ok, ShouldBeTrue)
			So(def.Kind, ShouldEqual, model.KindBackground)
		})
	})

	Convey("Given a catalog extended with extra definitions", t, func() {
		c := catalog.New(catalog.WithExtraBadges([]model.BadgeDefinition{
			{ID: "seeker_bonus", Role: model.RoleSeeker, Kind: model.KindSelectable},
		}))

		Convey("Then the built-in set is preserved alongside the addition", func() {
			So(c.Len(), ShouldEqual, 25)
			_, ok := c.Badge("seeker_bonus")
			So(ok, ShouldBeTrue)
		})
	})
}
