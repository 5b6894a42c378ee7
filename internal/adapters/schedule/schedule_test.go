package schedule_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/hiscores/internal/adapters/schedule"
	logging "github.com/okian/hiscores/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

func waitFor(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

func TestRunner(t *testing.T) {
	convey.Convey("Given a runner with a short interval", t, func() {
		var calls atomic.Int64
		job := func(ctx context.Context) error {
			calls.Add(1)
			return nil
		}

		convey.Convey("When it runs immediately", func() {
			r := schedule.New(job, schedule.WithInterval(10*time.Millisecond), schedule.WithName("test"))
			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- r.Run(ctx) }()

			convey.Convey("Then the job runs at start and on each tick", func() {
				convey.So(waitFor(func() bool { return calls.Load() >= 3 }, 2*time.Second), convey.ShouldBeTrue)
				convey.So(r.Runs(), convey.ShouldBeGreaterThanOrEqualTo, 3)
				convey.So(r.LastRun().IsZero(), convey.ShouldBeFalse)
				cancel()
				convey.So(<-errCh, convey.ShouldBeNil)
			})
		})

		convey.Convey("When it does not run immediately", func() {
			r := schedule.New(job, schedule.WithInterval(time.Hour), schedule.WithRunImmediately(false))
			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- r.Run(ctx) }()
			time.Sleep(20 * time.Millisecond)
			cancel()

			convey.Convey("Then nothing runs before the first tick", func() {
				convey.So(<-errCh, convey.ShouldBeNil)
				convey.So(calls.Load(), convey.ShouldEqual, 0)
				convey.So(r.LastRun().IsZero(), convey.ShouldBeTrue)
				convey.So(r.Interval(), convey.ShouldEqual, time.Hour)
			})
		})
	})

	convey.Convey("Given a job that fails", t, func() {
		var calls atomic.Int64
		job := func(ctx context.Context) error {
			calls.Add(1)
			return errors.New("boom")
		}
		r := schedule.New(job, schedule.WithInterval(5*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = r.Run(ctx) }()

		convey.Convey("Then the runner keeps going and counts failures", func() {
			convey.So(waitFor(func() bool { return r.Failures() >= 2 }, 2*time.Second), convey.ShouldBeTrue)
			convey.So(calls.Load(), convey.ShouldBeGreaterThanOrEqualTo, 2)
		})
	})

	convey.Convey("Given a running runner with a slow job", t, func() {
		started := make(chan struct{})
		var sawCancel atomic.Bool
		job := func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			sawCancel.Store(true)
			return ctx.Err()
		}
		r := schedule.New(job, schedule.WithInterval(time.Hour))
		go func() { _ = r.Run(context.Background()) }()
		<-started

		convey.Convey("When Shutdown is called", func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			err := r.Shutdown(ctx)

			convey.Convey("Then the job context is cancelled and shutdown completes", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sawCancel.Load(), convey.ShouldBeTrue)
			})

			convey.Convey("And a second Shutdown is harmless", func() {
				convey.So(r.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a job that ignores cancellation", t, func() {
		started := make(chan struct{})
		release := make(chan struct{})
		job := func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		}
		r := schedule.New(job, schedule.WithInterval(time.Hour))
		go func() { _ = r.Run(context.Background()) }()
		<-started

		convey.Convey("Then Shutdown times out with the ctx error", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			err := r.Shutdown(ctx)
			convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			close(release)
		})
	})

	convey.Convey("Given a runner that was never started", t, func() {
		r := schedule.New(func(context.Context) error { return nil })

		convey.Convey("Then Shutdown returns immediately", func() {
			convey.So(r.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a runner shut down before Run is scheduled", t, func() {
		var calls atomic.Int64
		r := schedule.New(func(context.Context) error {
			calls.Add(1)
			return nil
		}, schedule.WithInterval(time.Millisecond))
		convey.So(r.Shutdown(context.Background()), convey.ShouldBeNil)

		convey.Convey("Then Run returns at once without running the job", func() {
			convey.So(r.Run(context.Background()), convey.ShouldBeNil)
			convey.So(calls.Load(), convey.ShouldEqual, 0)
			convey.So(r.Runs(), convey.ShouldEqual, 0)
			convey.So(r.LastRun().IsZero(), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a runner already running", t, func() {
		r := schedule.New(func(context.Context) error { return nil }, schedule.WithInterval(time.Hour))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = r.Run(ctx) }()
		convey.So(waitFor(func() bool { return r.Runs() == 1 }, time.Second), convey.ShouldBeTrue)

		convey.Convey("Then a second Run is rejected", func() {
			convey.So(errors.Is(r.Run(ctx), schedule.ErrAlreadyRunning), convey.ShouldBeTrue)
		})
	})
}
