package dedupe_test

import (
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/ladder/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDeduper(t *testing.T) {
	Convey("Given a new Deduper", t, func() {
		d := dedupe.New()

		Convey("When an event id is new", func() {
			seen := d.SeenAndRecord("event-1")

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same id arrives twice", func() {
			d.SeenAndRecord("event-1")
			seen := d.SeenAndRecord("event-1")

			Convey("Then the second is reported as seen", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When an id is unrecorded", func() {
			d.SeenAndRecord("event-1")
			d.Unrecord("event-1")
			d.Unrecord("missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord("event-1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a Deduper bounded to three ids", t, func() {
		d := dedupe.New(dedupe.WithMaxSize(3))
		for _, id := range []string{"a", "b", "c", "d"} {
			d.SeenAndRecord(id)
		}

		Convey("Then the oldest id is forgotten first", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord("d"), ShouldBeTrue)
			So(d.SeenAndRecord("b"), ShouldBeTrue)
			So(d.SeenAndRecord("a"), ShouldBeFalse)
		})
	})

	Convey("Given concurrent callers", t, func() {
		d := dedupe.New(dedupe.WithMaxSize(10000))
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0

		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 500; i++ {
					if !d.SeenAndRecord(fmt.Sprintf("event-%d", i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each id is fresh exactly once", func() {
			So(fresh, ShouldEqual, 500)
			So(d.Size(), ShouldEqual, 500)
		})
	})
}
