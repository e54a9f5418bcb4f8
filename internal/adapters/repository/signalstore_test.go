package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/triage/internal/adapters/repository"
	"github.com/okian/triage/internal/domain/category"
	"github.com/okian/triage/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSignalStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty signal store", t, func() {
		store := repository.NewSignalStore()

		Convey("When reading an absent pair", func() {
			rec := store.Get(ctx, "alice", category.Database)

			Convey("Then a zero record comes back without error", func() {
				So(rec.ResolvedCount, ShouldEqual, 0)
				So(rec.CommitCount, ShouldEqual, 0)
			})
		})

		Convey("When incrementing both counters for a pair", func() {
			store.Increment(ctx, "alice", category.Database, model.SignalResolved)
			store.Increment(ctx, "alice", category.Database, model.SignalResolved)
			store.Increment(ctx, "alice", category.Database, model.SignalCommit)

			Convey("Then the counters reflect every increment", func() {
				rec := store.Get(ctx, "alice", category.Database)
				So(rec.ResolvedCount, ShouldEqual, 2)
				So(rec.CommitCount, ShouldEqual, 1)
			})

			Convey("Then other categories stay untouched", func() {
				rec := store.Get(ctx, "alice", category.Security)
				So(rec.ResolvedCount, ShouldEqual, 0)
			})
		})

		Convey("When incrementing with an unknown kind", func() {
			store.Increment(ctx, "alice", category.Database, model.SignalKind("merge"))

			Convey("Then nothing is recorded", func() {
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When snapshotting a category", func() {
			store.Increment(ctx, "alice", category.Database, model.SignalResolved)
			store.Increment(ctx, "bob", category.Database, model.SignalCommit)
			store.Increment(ctx, "carol", category.UI, model.SignalCommit)

			snap := store.Snapshot(ctx, category.Database)

			Convey("Then only that category's developers appear", func() {
				So(snap, ShouldHaveLength, 2)
				So(snap, ShouldContainKey, "alice")
				So(snap, ShouldContainKey, "bob")
				So(snap["alice"].ResolvedCount, ShouldEqual, 1)
				So(snap["bob"].CommitCount, ShouldEqual, 1)
			})

			Convey("Then mutating the snapshot leaves the store alone", func() {
				snap["alice"] = model.SignalRecord{ResolvedCount: 99}
				So(store.Get(ctx, "alice", category.Database).ResolvedCount, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a store with a single shard", t, func() {
		store := repository.NewSignalStore(repository.WithShardCount(1))

		Convey("Then keys still route correctly", func() {
			store.Increment(ctx, "alice", category.API, model.SignalCommit)
			store.Increment(ctx, "bob", category.API, model.SignalCommit)
			So(store.Count(ctx), ShouldEqual, 2)
		})
	})
}

func TestSignalStore_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	store := repository.NewSignalStore()

	const (
		developers = 10
		increments = 200
	)

	var wg sync.WaitGroup
	for d := 0; d < developers; d++ {
		id := fmt.Sprintf("dev-%d", d)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < increments; i++ {
				store.Increment(ctx, id, category.Performance, model.SignalResolved)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < increments; i++ {
				store.Increment(ctx, id, category.Performance, model.SignalCommit)
			}
		}()
	}
	wg.Wait()

	for d := 0; d < developers; d++ {
		id := fmt.Sprintf("dev-%d", d)
		rec := store.Get(ctx, id, category.Performance)
		if rec.ResolvedCount != increments {
			t.Errorf("developer %s resolved count = %d, want %d", id, rec.ResolvedCount, increments)
		}
		if rec.CommitCount != increments {
			t.Errorf("developer %s commit count = %d, want %d", id, rec.CommitCount, increments)
		}
	}
}
