// Package repository holds the in-memory stores backing the routing
// engine: raw activity signals, issue records, and the developer
// roster. Everything is keyed, mutation is atomic per key, and there is
// deliberately no cross-store transaction.
package repository

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/okian/triage/internal/domain/category"
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/pkg/metrics"
)

// defaultShardCount spreads signal keys across locks so concurrent
// increments for unrelated developers never contend.
const defaultShardCount = 8

// SignalOption applies a configuration option to the SignalStore.
type SignalOption func(*SignalStore)

// WithShardCount sets the number of shards.
func WithShardCount(n int) SignalOption {
	return func(s *SignalStore) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

type signalKey struct {
	developer string
	cat       category.Category
}

type signalShard struct {
	mu   sync.RWMutex
	recs map[signalKey]model.SignalRecord
}

// SignalStore holds per (developer, category) activity counters. All
// operations are atomic per key; increments never lose updates because
// the read-modify-write happens under the owning shard's lock.
type SignalStore struct {
	shards     []*signalShard
	shardCount int
}

// NewSignalStore creates a sharded in-memory signal store.
func NewSignalStore(opts ...SignalOption) *SignalStore {
	s := &SignalStore{
		shardCount: defaultShardCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*signalShard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &signalShard{recs: make(map[signalKey]model.SignalRecord)}
	}
	return s
}

func (s *SignalStore) shardFor(developerID string) *signalShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(developerID))
	return s.shards[h.Sum32()%uint32(s.shardCount)]
}

// Increment atomically adds 1 to the counter selected by kind, creating
// the (developer, category) pair if absent. Unknown kinds are ignored;
// the kind type is closed at the boundary.
func (s *SignalStore) Increment(_ context.Context, developerID string, cat category.Category, kind model.SignalKind) {
	shard := s.shardFor(developerID)
	key := signalKey{developer: developerID, cat: cat}

	shard.mu.Lock()
	rec := shard.recs[key]
	switch kind {
	case model.SignalResolved:
		rec.ResolvedCount++
	case model.SignalCommit:
		rec.CommitCount++
	default:
		shard.mu.Unlock()
		return
	}
	shard.recs[key] = rec
	shard.mu.Unlock()

	metrics.RecordSignalIncrement(string(kind))
}

// Get returns the record for the pair, zero-valued when absent. A zero
// record scores zero, so absence needs no error.
func (s *SignalStore) Get(_ context.Context, developerID string, cat category.Category) model.SignalRecord {
	shard := s.shardFor(developerID)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	return shard.recs[signalKey{developer: developerID, cat: cat}]
}

// Snapshot returns developerID -> record for one category. Shards are
// read-locked one at a time, so the result may interleave with
// concurrent increments; rankings are point-in-time recommendations and
// tolerate that.
func (s *SignalStore) Snapshot(_ context.Context, cat category.Category) map[string]model.SignalRecord {
	out := make(map[string]model.SignalRecord)
	for _, shard := range s.shards {
		shard.mu.RLock()
		for key, rec := range shard.recs {
			if key.cat == cat {
				out[key.developer] = rec
			}
		}
		shard.mu.RUnlock()
	}
	return out
}

// Count returns the number of distinct (developer, category) pairs.
func (s *SignalStore) Count(_ context.Context) int {
	n := 0
	for _, shard := range s.shards {
		shard.mu.RLock()
		n += len(shard.recs)
		shard.mu.RUnlock()
	}
	return n
}
