package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/vouch/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty memory store", t, func() {
		now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		store := repository.NewMemoryStore(repository.WithClock(func() time.Time { return now }))

		Convey("When reading a missing key", func() {
			_, ok, err := store.Read(ctx, repository.KeyCheckins)

			Convey("Then the miss is not an error", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When writing and reading back a document", func() {
			err := store.Write(ctx, repository.KeyCheckins, repository.SchemaCurrent, json.RawMessage(`[{"id":"c1"}]`))
			So(err, ShouldBeNil)

			doc, ok, err := store.Read(ctx, repository.KeyCheckins)

			Convey("Then the document round-trips with version and timestamp", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(doc.SchemaVersion, ShouldEqual, repository.SchemaCurrent)
				So(string(doc.Data), ShouldEqual, `[{"id":"c1"}]`)
				So(doc.UpdatedAt, ShouldEqual, now)
				So(store.Len(), ShouldEqual, 1)
			})
		})

		Convey("When writing with an empty key", func() {
			err := store.Write(ctx, "", repository.SchemaCurrent, json.RawMessage(`{}`))

			Convey("Then it fails with ErrEmptyKey", func() {
				So(err, ShouldEqual, repository.ErrEmptyKey)
			})
		})

		Convey("When the caller mutates its buffer after writing", func() {
			buf := json.RawMessage(`{"a":1}`)
			So(store.Write(ctx, "k", repository.SchemaCurrent, buf), ShouldBeNil)
			buf[2] = 'b'

			doc, _, err := store.Read(ctx, "k")

			Convey("Then the stored copy is unaffected", func() {
				So(err, ShouldBeNil)
				So(string(doc.Data), ShouldEqual, `{"a":1}`)
			})
		})

		Convey("When the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, _, readErr := store.Read(cancelled, "k")
			writeErr := store.Write(cancelled, "k", repository.SchemaCurrent, json.RawMessage(`{}`))

			Convey("Then both operations fail", func() {
				So(readErr, ShouldNotBeNil)
				So(writeErr, ShouldNotBeNil)
			})
		})
	})
}
