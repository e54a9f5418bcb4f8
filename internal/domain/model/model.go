// Package model contains domain entities passed between layers.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/triage/internal/domain/category"
)

// Status is the lifecycle state of an issue. The set is closed; any
// other value is rejected at the boundary.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusResolved   Status = "resolved"
)

// ErrUnknownStatus is returned when a raw value is not a valid status.
var ErrUnknownStatus = errors.New("unknown status")

// Valid reports whether s is one of the five lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusDone, StatusResolved:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusResolved
}

// String returns the wire representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus validates a raw string against the closed status set.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%q: %w", raw, ErrUnknownStatus)
	}
	return s, nil
}

// Candidate is one entry of an issue's submission-time shortlist.
type Candidate struct {
	DeveloperID string
	Score       float64
}

// Issue is the central mutable entity. Only the registry mutates it;
// everything else reads copies.
type Issue struct {
	ID          string
	Title       string
	Description string
	Category    category.Category
	Status      Status

	SubmittedBy string
	SubmittedAt time.Time

	// TopCandidates is snapshotted at creation and never updated, so the
	// recommendation shown at submission time stays reproducible.
	TopCandidates []Candidate

	AssignedTo string
	AssignedAt time.Time
	ResolvedAt time.Time
}

// Developer is a routable member of the roster.
type Developer struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time

	// IssueRefs lists the issue ids the developer currently holds,
	// sorted ascending.
	IssueRefs []string
}

// SignalKind selects which raw counter an increment targets.
type SignalKind string

const (
	SignalResolved SignalKind = "resolved"
	SignalCommit   SignalKind = "commit"
)

// Valid reports whether k names a known counter.
func (k SignalKind) Valid() bool {
	return k == SignalResolved || k == SignalCommit
}

// SignalRecord holds the raw per-developer, per-category activity
// counters feeding the scoring model. Counters never decrease.
type SignalRecord struct {
	ResolvedCount uint64
	CommitCount   uint64
}

// ActivityEvent is an externally-reported activity attribution, e.g. a
// commit landing in a category's code. EventID makes retries safe.
type ActivityEvent struct {
	EventID     string
	DeveloperID string
	Category    category.Category
	Kind        SignalKind
}
