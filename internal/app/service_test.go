package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	service "github.com/okian/triage/internal/app"
	"github.com/okian/triage/internal/domain/category"
	"github.com/okian/triage/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func startedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	s := service.New(opts...)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		s := startedService(t)

		Convey("When an issue runs through the full lifecycle", func() {
			issue, err := s.SubmitIssue(ctx, "login failure", "password reset loops back to the login page and drops the session token", "reporter-1")
			So(err, ShouldBeNil)
			So(issue.Category, ShouldEqual, category.Authentication)
			So(issue.Status, ShouldEqual, model.StatusPending)

			_, err = s.AssignIssue(ctx, issue.ID, "alice")
			So(err, ShouldBeNil)

			_, err = s.StartWork(ctx, issue.ID, "alice")
			So(err, ShouldBeNil)

			_, err = s.MarkDone(ctx, issue.ID, "alice")
			So(err, ShouldBeNil)

			resolved, err := s.ResolveIssue(ctx, issue.ID)
			So(err, ShouldBeNil)
			So(resolved.Status, ShouldEqual, model.StatusResolved)

			Convey("Then the profile reflects the earned credit", func() {
				detail, err := s.GetDeveloperProfile(ctx, "alice")
				So(err, ShouldBeNil)
				So(detail.Profile.Signals[category.Authentication].ResolvedCount, ShouldEqual, 1)
				So(detail.Profile.Scores[category.Authentication], ShouldBeGreaterThan, 0)
				So(detail.ResolvedByCategory[category.Authentication], ShouldHaveLength, 1)
			})

			Convey("Then the dashboard counts the resolution", func() {
				summary := s.Summarize(ctx)
				So(summary.Total, ShouldEqual, 1)
				So(summary.ByStatus[model.StatusResolved], ShouldEqual, 1)
			})
		})

		Convey("When listing issues by status", func() {
			first, err := s.SubmitIssue(ctx, "slow query", "the reports query hits a full table scan on the orders database", "reporter-1")
			So(err, ShouldBeNil)
			_, err = s.SubmitIssue(ctx, "flaky suite", "the checkout test is flaky and the coverage assertion fails on retry", "reporter-2")
			So(err, ShouldBeNil)
			_, err = s.AssignIssue(ctx, first.ID, "bob")
			So(err, ShouldBeNil)

			So(s.ListIssues(ctx), ShouldHaveLength, 2)
			So(s.ListIssues(ctx, model.StatusPending), ShouldHaveLength, 1)
			So(s.ListIssues(ctx, model.StatusAssigned), ShouldHaveLength, 1)
		})

		Convey("When previewing a category", func() {
			cat, err := s.PredictCategory(ctx, "xss vulnerability lets the comment form run script injection")
			So(err, ShouldBeNil)
			So(cat, ShouldEqual, category.Security)
		})

		Convey("When registering a developer explicitly", func() {
			dev, err := s.RegisterDeveloper(ctx, "carol", "Carol Diaz")
			So(err, ShouldBeNil)
			So(dev.DisplayName, ShouldEqual, "Carol Diaz")

			issues, err := s.DeveloperIssuesByStatus(ctx, "carol")
			So(err, ShouldBeNil)
			So(issues, ShouldBeEmpty)
		})
	})
}

func TestService_ActivityPipeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		s := startedService(t, service.WithWorkerCount(2), service.WithQueueSize(64))

		Convey("When activity events are ingested", func() {
			_, err := s.RegisterDeveloper(ctx, "alice", "")
			So(err, ShouldBeNil)

			for i := 0; i < 5; i++ {
				e := model.ActivityEvent{
					EventID:     fmt.Sprintf("evt-%d", i),
					DeveloperID: "alice",
					Category:    category.Database,
					Kind:        model.SignalCommit,
				}
				So(s.SeenAndRecord(ctx, e.EventID), ShouldBeFalse)
				So(s.EnqueueActivity(ctx, e), ShouldBeTrue)
			}

			Convey("Then workers apply them to the profile", func() {
				waitFor(t, func() bool {
					detail, err := s.GetDeveloperProfile(ctx, "alice")
					return err == nil && detail.Profile.Signals[category.Database].CommitCount == 5
				})

				detail, err := s.GetDeveloperProfile(ctx, "alice")
				So(err, ShouldBeNil)
				So(detail.Profile.Scores[category.Database], ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the same event id arrives twice", func() {
			So(s.SeenAndRecord(ctx, "evt-dup"), ShouldBeFalse)
			So(s.SeenAndRecord(ctx, "evt-dup"), ShouldBeTrue)

			Convey("And unrecording allows a retry", func() {
				s.Unrecord(ctx, "evt-dup")
				So(s.SeenAndRecord(ctx, "evt-dup"), ShouldBeFalse)
			})
		})

		Convey("Then ingested activity shifts the next shortlist", func() {
			_, err := s.RegisterDeveloper(ctx, "bob", "")
			So(err, ShouldBeNil)

			e := model.ActivityEvent{
				EventID:     "evt-shortlist",
				DeveloperID: "bob",
				Category:    category.DevOps,
				Kind:        model.SignalCommit,
			}
			So(s.EnqueueActivity(ctx, e), ShouldBeTrue)

			waitFor(t, func() bool {
				detail, err := s.GetDeveloperProfile(ctx, "bob")
				return err == nil && detail.Profile.Signals[category.DevOps].CommitCount == 1
			})

			issue, err := s.SubmitIssue(ctx, "broken deploy", "the docker image fails the ci pipeline on every deploy", "reporter-1")
			So(err, ShouldBeNil)
			So(issue.Category, ShouldEqual, category.DevOps)
			So(issue.TopCandidates, ShouldHaveLength, 1)
			So(issue.TopCandidates[0].DeveloperID, ShouldEqual, "bob")
		})
	})
}

func TestService_Backpressure(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service whose activity queue has been closed", t, func() {
		s := service.New(service.WithWorkerCount(1), service.WithQueueSize(1))
		So(s.Start(ctx), ShouldBeNil)
		s.Stop()

		Convey("When enqueueing after shutdown", func() {
			e := model.ActivityEvent{
				EventID:     "evt-late",
				DeveloperID: "alice",
				Category:    category.Database,
				Kind:        model.SignalCommit,
			}

			Convey("Then the enqueue is refused", func() {
				So(s.EnqueueActivity(ctx, e), ShouldBeFalse)
			})
		})
	})
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with some state", t, func() {
		s := startedService(t, service.WithWorkerCount(2), service.WithTopK(5))

		_, err := s.SubmitIssue(ctx, "login failure", "password reset loops back to the login page", "reporter-1")
		So(err, ShouldBeNil)
		_, err = s.RegisterDeveloper(ctx, "alice", "")
		So(err, ShouldBeNil)

		Convey("When fetching stats", func() {
			stats := s.GetStats()

			Convey("Then the counters reflect the state", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["workerCount"], ShouldEqual, 2)
				So(stats["topK"], ShouldEqual, 5)
				So(stats["issues"], ShouldEqual, 1)
				So(stats["developers"], ShouldEqual, 1)
			})
		})
	})

	Convey("Given a service that never started", t, func() {
		s := service.New()
		stats := s.GetStats()

		So(stats["started"], ShouldBeFalse)
		So(stats, ShouldNotContainKey, "issues")
	})
}

func TestService_StartStop(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service", t, func() {
		s := service.New()

		Convey("When starting twice", func() {
			So(s.Start(ctx), ShouldBeNil)
			So(s.Start(ctx), ShouldBeNil)
			s.Stop()
		})

		Convey("When stopping twice", func() {
			So(s.Start(ctx), ShouldBeNil)
			s.Stop()
			s.Stop()
		})

		Convey("When stopping before starting", func() {
			s.Stop()
		})
	})
}
