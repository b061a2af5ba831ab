package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/vouch/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given a clean environment", t, func() {
		os.Unsetenv("VOUCH_CONFIG")
		os.Unsetenv("VOUCH_ADDR")
		os.Unsetenv("VOUCH_WORKER_COUNT")
		os.Unsetenv("VOUCH_TRUST_WINDOW_MONTHS")

		Convey("When loading with no file and no env", func() {
			cfg, err := config.Load(ctx)

			Convey("Then the defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9090")
				So(cfg.WorkerCount, ShouldEqual, 1)
				So(cfg.TrustWindowMonths, ShouldEqual, 12)
				So(cfg.BackgroundLockMonths, ShouldEqual, 12)
				So(cfg.ExpectationsWeight, ShouldAlmostEqual, 0.65, 0.0001)
				So(cfg.GrowthWeight, ShouldAlmostEqual, 0.35, 0.0001)
				So(cfg.MaxLeaderboardLimit, ShouldEqual, 100)
			})
		})

		Convey("When environment variables override defaults", func() {
			os.Setenv("VOUCH_ADDR", ":7777")
			os.Setenv("VOUCH_WORKER_COUNT", "3")
			defer os.Unsetenv("VOUCH_ADDR")
			defer os.Unsetenv("VOUCH_WORKER_COUNT")

			cfg, err := config.Load(ctx)

			Convey("Then the env values win", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7777")
				So(cfg.WorkerCount, ShouldEqual, 3)
			})
		})

		Convey("When a config file is provided", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "vouch.yaml")
			So(os.WriteFile(path, []byte("addr: \":6060\"\ntrust_window_months: 6\n"), 0o600), ShouldBeNil)
			os.Setenv("VOUCH_CONFIG", path)
			defer os.Unsetenv("VOUCH_CONFIG")

			cfg, err := config.Load(ctx)

			Convey("Then file values layer over the defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
				So(cfg.TrustWindowMonths, ShouldEqual, 6)
				So(cfg.WorkerCount, ShouldEqual, 1)
			})

			Convey("And env still outranks the file", func() {
				os.Setenv("VOUCH_ADDR", ":5050")
				defer os.Unsetenv("VOUCH_ADDR")

				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":5050")
			})
		})

		Convey("When the config file does not exist", func() {
			os.Setenv("VOUCH_CONFIG", "/nonexistent/vouch.yaml")
			defer os.Unsetenv("VOUCH_CONFIG")

			_, err := config.Load(ctx)

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When validation rejects a value", func() {
			os.Setenv("VOUCH_TRUST_WINDOW_MONTHS", "0")
			defer os.Unsetenv("VOUCH_TRUST_WINDOW_MONTHS")

			_, err := config.Load(ctx)

			Convey("Then the invalid-config sentinel is returned", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "trust_window_months")
			})
		})
	})
}
