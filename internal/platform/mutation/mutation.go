// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mutation coordinates remote writes against the query cache.

Every mutation follows the same state machine:

	Idle ──Run──▶ Pending ──┬──▶ Succeeded
	                        └──▶ Failed (optimistic edit rolled back)

A mutation may be optimistic: before the remote call it cancels in-flight
fetches of its own cache family, snapshots that family plus any shared ones and
applies a local edit. If the remote call fails the untouched part of the
snapshot is restored. Whatever the outcome, the edited families are marked
stale once the call settles, so the next read reconciles with the source.

Only one mutation of a given kind may be pending per (owner, target); a second
Run for the same triple while the first is pending does nothing and returns
[ErrInFlight]. Owners never see each other's status.
*/
package mutation

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/taibuivan/impulsa/internal/platform/apperr"
	"github.com/taibuivan/impulsa/internal/platform/ctxutil"
	"github.com/taibuivan/impulsa/internal/platform/metrics"
	"github.com/taibuivan/impulsa/internal/platform/notify"
	"github.com/taibuivan/impulsa/internal/platform/querycache"
)

// ErrInFlight reports that the same mutation is already pending for the target.
var ErrInFlight = errors.New("mutation: already in flight")

// # States

// State is the lifecycle position of one mutation.
type State string

const (
	StateIdle      State = "idle"
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Status is what the UI sees of a mutation: whether it is pending and, if it
// failed, the message shown to the user.
type Status struct {
	State   State  `json:"state"`
	Pending bool   `json:"pending"`
	Error   string `json:"error,omitempty"`
}

func statusOf(state State, message string) Status {
	return Status{State: state, Pending: state == StatePending, Error: message}
}

// # Mutation description

// Optimistic describes the local edit applied before the remote call.
type Optimistic struct {
	// Prefix selects the acting user's cache family to cancel, snapshot, edit and invalidate.
	Prefix querycache.Key
	// Shared families are edited and invalidated too, but their fetches belong
	// to other users and are never cancelled.
	Shared []querycache.Key
	// Apply returns the edited copy of one entry's data. It must not modify its argument.
	Apply func(data any) any
}

// Mutation is one remote write.
type Mutation struct {
	// Kind, Owner and Target identify the mutation for the in-flight guard,
	// e.g. ("delete_initiative", "7", "12"). Owner is the acting user.
	Kind   string
	Owner  string
	Target string

	// Remote performs the write against the platform API.
	Remote func(ctx context.Context) error

	// Optimistic is nil for confirmed-only mutations.
	Optimistic *Optimistic

	// Invalidate lists the cache families to mark stale after a successful call.
	Invalidate []querycache.Key

	// FailureMessage is shown to the user when Remote fails.
	FailureMessage string

	// OnSuccess runs after a successful call, before the cache is invalidated.
	OnSuccess func(ctx context.Context)

	// Sink receives the failure notification. Defaults to the coordinator's sink.
	Sink notify.Sink
}

// # Coordinator

// Coordinator runs mutations and tracks their status per (kind, owner, target).
type Coordinator struct {
	cache *querycache.Cache
	sink  notify.Sink

	mu     sync.Mutex
	states map[string]Status
}

// NewCoordinator constructs a [Coordinator] writing to cache.
func NewCoordinator(cache *querycache.Cache, sink notify.Sink) *Coordinator {
	if sink == nil {
		sink = notify.Discard
	}
	return &Coordinator{
		cache:  cache,
		sink:   sink,
		states: make(map[string]Status),
	}
}

// Status returns the last known status of a mutation; unknown mutations are idle.
// Successful mutations are forgotten, so they read as idle again.
func (coordinator *Coordinator) Status(kind, owner, target string) Status {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()

	status, found := coordinator.states[statusID(kind, owner, target)]
	if !found {
		return statusOf(StateIdle, "")
	}
	return status
}

func statusID(kind, owner, target string) string {
	return kind + ":" + owner + ":" + target
}

// begin moves the mutation to Pending unless it already is.
func (coordinator *Coordinator) begin(id string) bool {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()

	if coordinator.states[id].State == StatePending {
		return false
	}
	coordinator.states[id] = statusOf(StatePending, "")
	return true
}

func (coordinator *Coordinator) settle(id string, status Status) {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()

	if status.State == StateSucceeded || status.State == StateIdle {
		delete(coordinator.states, id)
		return
	}
	coordinator.states[id] = status
}

/*
Run executes m.

Returns:
  - Status: the settled status (Succeeded or Failed), or Pending with ErrInFlight
  - error: ErrInFlight, querycache.ErrAborted when ctx was cancelled during the
    remote call, or an *apperr.AppError (UPSTREAM_ERROR) carrying FailureMessage
*/
func (coordinator *Coordinator) Run(ctx context.Context, m Mutation) (Status, error) {
	id := statusID(m.Kind, m.Owner, m.Target)
	logger := ctxutil.GetLogger(ctx).With(
		slog.String("mutation", m.Kind),
		slog.String("owner", m.Owner),
		slog.String("target", m.Target),
	)

	if !coordinator.begin(id) {
		logger.Debug("mutation_skipped_in_flight")
		metrics.ObserveMutation(m.Kind, metrics.ResultSkipped)
		return statusOf(StatePending, ""), ErrInFlight
	}

	sink := m.Sink
	if sink == nil {
		sink = coordinator.sink
	}

	// 1. Synchronous half: cancel, snapshot, optimistic edit
	var snapshot querycache.Snapshot
	if m.Optimistic != nil {
		snapshot = coordinator.cache.BeginOptimistic(m.Optimistic.Apply, m.Optimistic.Prefix, m.Optimistic.Shared...)
		logger.Debug("mutation_optimistic_applied", slog.Int("entries", snapshot.Len()))
	}

	// 2. The only suspension point
	err := m.Remote(ctx)

	// 3. Settle
	if err != nil {
		if m.Optimistic != nil {
			coordinator.cache.Restore(snapshot)
			coordinator.invalidateOptimistic(m.Optimistic)
		}

		if ctx.Err() != nil {
			logger.Info("mutation_aborted")
			metrics.ObserveMutation(m.Kind, metrics.ResultAborted)
			coordinator.settle(id, statusOf(StateIdle, ""))
			return statusOf(StateIdle, ""), querycache.ErrAborted
		}

		logger.Warn("mutation_failed",
			slog.Bool("rolled_back", m.Optimistic != nil),
			slog.Any("error", err),
		)
		sink.Notify(m.FailureMessage, notify.SeverityError)
		metrics.ObserveMutation(m.Kind, metrics.ResultFailed)

		status := statusOf(StateFailed, m.FailureMessage)
		coordinator.settle(id, status)
		return status, apperr.Upstream(m.FailureMessage, err)
	}

	if m.OnSuccess != nil {
		m.OnSuccess(ctx)
	}
	if m.Optimistic != nil {
		coordinator.invalidateOptimistic(m.Optimistic)
	}
	for _, prefix := range m.Invalidate {
		coordinator.cache.Invalidate(prefix)
	}

	logger.Info("mutation_succeeded")
	metrics.ObserveMutation(m.Kind, metrics.ResultSucceeded)

	status := statusOf(StateSucceeded, "")
	coordinator.settle(id, status)
	return status, nil
}

func (coordinator *Coordinator) invalidateOptimistic(o *Optimistic) {
	coordinator.cache.Invalidate(o.Prefix)
	for _, prefix := range o.Shared {
		coordinator.cache.Invalidate(prefix)
	}
}
