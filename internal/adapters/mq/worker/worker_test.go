package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	queue "github.com/okian/ladder/internal/adapters/mq/queue"
	worker "github.com/okian/ladder/internal/adapters/mq/worker"
	"github.com/smartystreets/goconvey/convey"
)

func TestActor(t *testing.T) {
	convey.Convey("Given an actor on a mailbox", t, func() {
		ctx := context.Background()
		mailbox := queue.New(queue.WithCapacity(16))
		actor := worker.New(mailbox, worker.WithName("session-test"))
		go actor.Run(ctx)

		convey.Convey("When tasks are enqueued", func() {
			var order []int
			done := make(chan struct{})
			for i := 0; i < 5; i++ {
				i := i
				convey.So(mailbox.Enqueue(ctx, queue.Task{Name: "step", Run: func(context.Context) {
					order = append(order, i)
					if i == 4 {
						close(done)
					}
				}}), convey.ShouldBeNil)
			}
			<-done

			convey.Convey("Then they run one at a time in order", func() {
				convey.So(order, convey.ShouldResemble, []int{0, 1, 2, 3, 4})
			})
		})

		convey.Convey("When a task panics", func() {
			var after atomic.Bool
			done := make(chan struct{})
			convey.So(mailbox.Enqueue(ctx, queue.Task{Name: "boom", Run: func(context.Context) { panic("boom") }}), convey.ShouldBeNil)
			convey.So(mailbox.Enqueue(ctx, queue.Task{Name: "next", Run: func(context.Context) {
				after.Store(true)
				close(done)
			}}), convey.ShouldBeNil)

			convey.Convey("Then the actor keeps going", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
				}
				convey.So(after.Load(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the mailbox is closed with work queued", func() {
			var ran atomic.Int32
			block := make(chan struct{})
			convey.So(mailbox.Enqueue(ctx, queue.Task{Run: func(context.Context) { <-block }}), convey.ShouldBeNil)
			for i := 0; i < 3; i++ {
				convey.So(mailbox.Enqueue(ctx, queue.Task{Run: func(context.Context) { ran.Add(1) }}), convey.ShouldBeNil)
			}
			convey.So(mailbox.Close(), convey.ShouldBeNil)
			close(block)

			convey.Convey("Then the queued tasks drain before the actor exits", func() {
				select {
				case <-actor.Done():
				case <-time.After(time.Second):
				}
				convey.So(ran.Load(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When shut down", func() {
			sctx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()

			convey.Convey("Then Run returns", func() {
				convey.So(actor.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(actor.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}
