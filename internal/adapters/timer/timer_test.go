package timer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ladder/internal/adapters/timer"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestManual(t *testing.T) {
	Convey("Given a manual scheduler", t, func() {
		m := timer.NewManual(epoch)
		var fired []string

		Convey("When callbacks are due at different times", func() {
			m.AfterFunc(3*time.Second, func() { fired = append(fired, "c") })
			m.AfterFunc(1*time.Second, func() { fired = append(fired, "a") })
			m.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
			m.Advance(2500 * time.Millisecond)

			Convey("Then only due ones fire, in deadline order", func() {
				So(fired, ShouldResemble, []string{"a", "b"})
				So(m.Pending(), ShouldEqual, 1)
				So(m.Now(), ShouldEqual, epoch.Add(2500*time.Millisecond))
			})
		})

		Convey("When a callback is cancelled", func() {
			tok := m.AfterFunc(time.Second, func() { fired = append(fired, "x") })
			first := tok.Cancel()
			second := tok.Cancel()
			m.Advance(time.Minute)

			Convey("Then it never fires and only the first cancel counts", func() {
				So(fired, ShouldBeEmpty)
				So(first, ShouldBeTrue)
				So(second, ShouldBeFalse)
			})
		})

		Convey("When a callback schedules another inside the advanced window", func() {
			m.AfterFunc(time.Second, func() {
				fired = append(fired, "first")
				m.AfterFunc(time.Second, func() { fired = append(fired, "second") })
			})
			m.Advance(5 * time.Second)

			Convey("Then both fire and see their own time", func() {
				So(fired, ShouldResemble, []string{"first", "second"})
				So(m.Pending(), ShouldEqual, 0)
			})
		})

		Convey("When cancelling after firing", func() {
			tok := m.AfterFunc(time.Second, func() {})
			m.Advance(time.Second)

			Convey("Then cancel reports the callback already ran", func() {
				So(tok.Cancel(), ShouldBeFalse)
			})
		})
	})
}

func TestClock(t *testing.T) {
	Convey("Given a clock scheduler on a fake clock posting to a mailbox", t, func() {
		fake := clockwork.NewFakeClockAt(epoch)
		mailbox := make(chan func(), 4)
		c := timer.NewClock(func(fn func()) error {
			mailbox <- fn
			return nil
		}, timer.WithClock(fake))

		So(c.Now(), ShouldEqual, epoch)

		Convey("When the timer fires", func() {
			ran := false
			tok := c.AfterFunc(time.Second, func() { ran = true })
			fake.Advance(time.Second)

			Convey("Then the callback is posted, not run in place", func() {
				var fn func()
				select {
				case fn = <-mailbox:
				case <-time.After(time.Second):
				}
				So(fn, ShouldNotBeNil)
				So(ran, ShouldBeFalse)
				fn()
				So(ran, ShouldBeTrue)
				So(tok.Cancel(), ShouldBeFalse)
			})
		})

		Convey("When the token is revoked after the timer fired but before delivery", func() {
			ran := false
			tok := c.AfterFunc(time.Second, func() { ran = true })
			fake.Advance(time.Second)

			var fn func()
			select {
			case fn = <-mailbox:
			case <-time.After(time.Second):
			}
			So(fn, ShouldNotBeNil)
			cancelled := tok.Cancel()
			fn()

			Convey("Then the in-flight callback is dropped", func() {
				So(cancelled, ShouldBeTrue)
				So(ran, ShouldBeFalse)
			})
		})

		Convey("When the token is revoked before the deadline", func() {
			tok := c.AfterFunc(time.Second, func() {})
			So(tok.Cancel(), ShouldBeTrue)
			fake.Advance(time.Second)

			Convey("Then nothing is posted", func() {
				select {
				case <-mailbox:
					So("posted", ShouldBeEmpty)
				case <-time.After(50 * time.Millisecond):
				}
			})
		})
	})

	Convey("Given a mailbox that refuses work", t, func() {
		fake := clockwork.NewFakeClockAt(epoch)
		refused := make(chan struct{}, 1)
		c := timer.NewClock(func(func()) error {
			refused <- struct{}{}
			return errors.New("mailbox full")
		}, timer.WithClock(fake))

		c.AfterFunc(time.Second, func() {})
		fake.Advance(time.Second)

		Convey("Then the failure is absorbed", func() {
			select {
			case <-refused:
			case <-time.After(time.Second):
				So("not refused", ShouldBeEmpty)
			}
		})
	})
}
