// Package store holds the planner state, the actions that change it, and the
// subscription surface the UI reads it through.
//
// Every action commits locally before it returns: the new snapshot is saved to
// the cache and every subscriber is notified synchronously. Remote writes are
// queued afterwards and never reported back to the caller.
package store

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/julianstephens/vitrine/internal/logger"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/remote"
)

// State is an immutable snapshot. Collections are replaced, never mutated, so
// an unchanged slice keeps its identity across commits.
type State struct {
	Clients         []models.Client
	Cards           []models.ContentCard
	DailyNotes      []models.DailyNote
	CurrentClientID string // empty means no client is selected
	IsLoading       bool
}

// Persisted returns the part of the snapshot written to the cache.
func (s State) Persisted() models.AppState {
	return models.AppState{
		Clients:    s.Clients,
		Cards:      s.Cards,
		DailyNotes: s.DailyNotes,
	}.Normalize()
}

// Persister loads and saves the durable snapshot. Implementations absorb
// their own failures.
type Persister interface {
	Load() models.AppState
	Save(models.AppState)
}

type Options struct {
	// Cache seeds the initial state and receives every commit. Nil keeps the
	// state in memory only.
	Cache Persister
	// Remote mirrors writes. Nil runs in local-only mode.
	Remote remote.Adapter
	// MirrorRate caps remote calls per second on each table. Zero is unlimited.
	MirrorRate float64
	// Now replaces the clock for ids and timestamps.
	Now func() time.Time
}

type Store struct {
	// mu serializes actions: compute, save and notify finish before the next
	// action starts.
	mu sync.Mutex

	stateMu sync.RWMutex
	state   State

	cache  Persister
	remote remote.Adapter
	ids    *idSource

	subsMu sync.Mutex
	subs   []*subscriber

	mirror    *mirror
	closeOnce sync.Once
	closeErr  error
}

// New builds a store from the cached snapshot, with empty collections when
// nothing is cached.
func New(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	initial := models.EmptyAppState()
	if opts.Cache != nil {
		initial = opts.Cache.Load().Normalize()
	}

	s := &Store{
		state: State{
			Clients:    initial.Clients,
			Cards:      initial.Cards,
			DailyNotes: initial.DailyNotes,
		},
		cache:  opts.Cache,
		remote: opts.Remote,
		ids:    newIDSource(now),
	}

	if opts.Remote != nil {
		s.mirror = newMirror(rate.Limit(opts.MirrorRate))
	}
	return s
}

// State returns the current snapshot. Safe to call from listeners.
func (s *Store) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Remote reports whether writes are mirrored to a remote adapter.
func (s *Store) Remote() bool {
	return s.remote != nil
}

// commit installs next, saves it and notifies subscribers. Callers hold mu.
func (s *Store) commit(next State) {
	s.stateMu.Lock()
	s.state = next
	s.stateMu.Unlock()

	if s.cache != nil {
		s.cache.Save(next.Persisted())
	}
	s.notify()
}

// update runs fn against the current snapshot and commits the result unless
// fn reports no change.
func (s *Store) update(fn func(cur State) (State, bool)) {
	next, changed := fn(s.State())
	if changed {
		s.commit(next)
	}
}

// Flush blocks until every queued remote write has run or ctx is done.
func (s *Store) Flush(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	return s.mirror.flush(ctx)
}

// Close drains the remote queues, stops the workers and closes the adapter.
// Queued writes still pending when ctx is done are abandoned.
func (s *Store) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		if s.mirror == nil {
			return
		}
		if err := s.mirror.close(ctx); err != nil {
			logger.Warn("remote queue not drained", "error", err)
			s.closeErr = err
		}
		if err := s.remote.Close(); err != nil {
			logger.Error("failed to close remote adapter", "error", err)
			if s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}
