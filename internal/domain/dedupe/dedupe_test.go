package dedupe_test

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/okian/dreamxi/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryIndex(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new index", t, func() {
		d := dedupe.NewInMemoryIndex()

		Convey("Then it should start empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a key is remembered for the first time", func() {
			id, seen := d.Remember(ctx, "req-1", "match-1")

			Convey("Then it should be recorded against the match", func() {
				So(seen, ShouldBeFalse)
				So(id, ShouldEqual, "match-1")
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same key is submitted again", func() {
			d.Remember(ctx, "req-1", "match-1")
			id, seen := d.Remember(ctx, "req-1", "match-2")

			Convey("Then the original match should be returned", func() {
				So(seen, ShouldBeTrue)
				So(id, ShouldEqual, "match-1")
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is forgotten", func() {
			d.Remember(ctx, "req-1", "match-1")
			d.Forget(ctx, "req-1")
			d.Forget(ctx, "unknown")
			id, seen := d.Remember(ctx, "req-1", "match-3")

			Convey("Then it may be reused", func() {
				So(seen, ShouldBeFalse)
				So(id, ShouldEqual, "match-3")
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a bounded index", t, func() {
		d := dedupe.NewInMemoryIndex(dedupe.WithMaxSize(3))
		for i := 1; i <= 3; i++ {
			d.Remember(ctx, "req-"+strconv.Itoa(i), "match-"+strconv.Itoa(i))
		}

		Convey("When a fourth key arrives", func() {
			d.Remember(ctx, "req-4", "match-4")

			Convey("Then the oldest key should be evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				_, seen := d.Remember(ctx, "req-2", "x")
				So(seen, ShouldBeTrue)
				_, seen = d.Remember(ctx, "req-1", "x")
				So(seen, ShouldBeFalse)
			})
		})

		Convey("When a middle key is forgotten before overflow", func() {
			d.Forget(ctx, "req-2")
			d.Remember(ctx, "req-4", "match-4")
			d.Remember(ctx, "req-5", "match-5")

			Convey("Then eviction should still follow insertion order", func() {
				So(d.Size(), ShouldEqual, 3)
				_, seen := d.Remember(ctx, "req-3", "x")
				So(seen, ShouldBeTrue)
				_, seen = d.Remember(ctx, "req-1", "x")
				So(seen, ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded index", t, func() {
		d := dedupe.NewInMemoryIndex(dedupe.WithMaxSize(0))

		Convey("Then nothing should be evicted", func() {
			for i := 0; i < 1000; i++ {
				d.Remember(ctx, strconv.Itoa(i), "m")
			}
			So(d.Size(), ShouldEqual, 1000)
		})
	})

	Convey("Given concurrent submitters racing on one key", t, func() {
		d := dedupe.NewInMemoryIndex()
		var wg sync.WaitGroup
		var mu sync.Mutex
		winners := map[string]int{}

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id, _ := d.Remember(ctx, "shared", "match-"+strconv.Itoa(i))
				mu.Lock()
				winners[id]++
				mu.Unlock()
			}(i)
		}
		wg.Wait()

		Convey("Then every caller should see the same match", func() {
			So(len(winners), ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
