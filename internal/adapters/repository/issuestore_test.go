package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/triage/internal/adapters/repository"
	"github.com/okian/triage/internal/domain/category"
	"github.com/okian/triage/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func testIssue(id string) model.Issue {
	return model.Issue{
		ID:          id,
		Title:       "login broken",
		Description: "password reset loops back to the login page",
		Category:    category.Authentication,
		Status:      model.StatusPending,
		SubmittedBy: "reporter-1",
		SubmittedAt: time.Now().UTC(),
	}
}

func TestIssueStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty issue store", t, func() {
		store := repository.NewIssueStore()

		Convey("When storing and reading back an issue", func() {
			want := testIssue("ISSUE-1")
			So(store.Put(ctx, want), ShouldBeNil)

			got, err := store.Get(ctx, "ISSUE-1")
			So(err, ShouldBeNil)
			So(got.Title, ShouldEqual, want.Title)
			So(got.Status, ShouldEqual, model.StatusPending)
		})

		Convey("When storing a duplicate id", func() {
			So(store.Put(ctx, testIssue("ISSUE-1")), ShouldBeNil)
			err := store.Put(ctx, testIssue("ISSUE-1"))

			So(err, ShouldWrap, repository.ErrIssueExists)
		})

		Convey("When reading an unknown id", func() {
			_, err := store.Get(ctx, "ISSUE-404")
			So(err, ShouldWrap, repository.ErrIssueNotFound)
		})

		Convey("When updating an unknown id", func() {
			_, err := store.Update(ctx, "ISSUE-404", func(i model.Issue) (model.Issue, error) {
				return i, nil
			})
			So(err, ShouldWrap, repository.ErrIssueNotFound)
		})

		Convey("When an update mutator succeeds", func() {
			So(store.Put(ctx, testIssue("ISSUE-1")), ShouldBeNil)

			got, err := store.Update(ctx, "ISSUE-1", func(i model.Issue) (model.Issue, error) {
				i.Status = model.StatusAssigned
				i.AssignedTo = "alice"
				return i, nil
			})

			Convey("Then the stored issue carries the change", func() {
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, model.StatusAssigned)

				stored, err := store.Get(ctx, "ISSUE-1")
				So(err, ShouldBeNil)
				So(stored.Status, ShouldEqual, model.StatusAssigned)
				So(stored.AssignedTo, ShouldEqual, "alice")
			})
		})

		Convey("When an update mutator fails", func() {
			So(store.Put(ctx, testIssue("ISSUE-1")), ShouldBeNil)

			boom := errors.New("rejected")
			_, err := store.Update(ctx, "ISSUE-1", func(i model.Issue) (model.Issue, error) {
				i.Status = model.StatusResolved
				return i, boom
			})

			Convey("Then the stored issue is untouched", func() {
				So(errors.Is(err, boom), ShouldBeTrue)

				stored, getErr := store.Get(ctx, "ISSUE-1")
				So(getErr, ShouldBeNil)
				So(stored.Status, ShouldEqual, model.StatusPending)
			})
		})

		Convey("When listing issues", func() {
			So(store.Put(ctx, testIssue("ISSUE-1")), ShouldBeNil)
			So(store.Put(ctx, testIssue("ISSUE-2")), ShouldBeNil)

			So(store.List(ctx), ShouldHaveLength, 2)
			So(store.Count(ctx), ShouldEqual, 2)
		})
	})
}

// Concurrent mutators against the same issue must be serialized: every
// read-modify-write lands, none overwrite each other.
func TestIssueStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := repository.NewIssueStore()

	issue := testIssue("ISSUE-1")
	issue.Description = "0"
	if err := store.Put(ctx, issue); err != nil {
		t.Fatalf("put: %v", err)
	}

	const goroutines = 50
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "ISSUE-1", func(cur model.Issue) (model.Issue, error) {
				var n int
				fmt.Sscanf(cur.Description, "%d", &n)
				cur.Description = fmt.Sprintf("%d", n+1)
				return cur, nil
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "ISSUE-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if want := fmt.Sprintf("%d", goroutines); got.Description != want {
		t.Errorf("lost updates: counter = %s, want %s", got.Description, want)
	}
}
