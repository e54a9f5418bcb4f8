package traffic_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/triage/internal/adapters/http/api"
	service "github.com/okian/triage/internal/app"
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/traffic"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running engine behind a test server", t, func() {
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(256))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(api.NewServer(svc, svc).Router(ctx))
		defer srv.Close()

		Convey("When driving a small seeded run", func() {
			runner := traffic.NewRunner(srv.URL,
				traffic.WithDevelopers(3),
				traffic.WithIssues(9),
				traffic.WithConcurrency(3),
				traffic.WithSeed(7),
			)

			err := runner.Run(ctx)

			Convey("Then every driven issue ends up resolved", func() {
				So(err, ShouldBeNil)

				summary := svc.Summarize(ctx)
				So(summary.Total, ShouldEqual, 9)
				So(summary.ByStatus[model.StatusResolved], ShouldEqual, 9)
			})

			Convey("Then the seeded developers carry commit signals", func() {
				So(err, ShouldBeNil)

				// Seeded activity is applied asynchronously; give the
				// workers a moment to drain the queue.
				deadline := time.Now().Add(2 * time.Second)
				var commits uint64
				for time.Now().Before(deadline) {
					commits = 0
					detail, derr := svc.GetDeveloperProfile(ctx, "dev-0@example.com")
					So(derr, ShouldBeNil)
					for _, rec := range detail.Profile.Signals {
						commits += rec.CommitCount
					}
					if commits > 0 {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(commits, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the target is unreachable", func() {
			runner := traffic.NewRunner("http://127.0.0.1:1",
				traffic.WithDevelopers(1),
				traffic.WithIssues(1),
			)

			Convey("Then the run reports the failure", func() {
				So(runner.Run(ctx), ShouldNotBeNil)
			})
		})
	})
}
