package game

import (
	"context"
	"encoding/json"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/roach88/questlog/internal/engine"
	"github.com/roach88/questlog/internal/journal"
	"github.com/roach88/questlog/internal/progress"
	"github.com/roach88/questlog/internal/storage"
)

// storageErrorMessage is the user-facing text set when a persist attempt
// fails. The application ships in Spanish; this string is part of its UI
// surface, not a log line.
const storageErrorMessage = "No se pudo guardar el progreso. Tu progreso podría perderse."

// Store wires the reducer and the storage adapter into a lifecycle: load
// on start, persist on change. It is the only mutation path to GameState;
// consumers read snapshots and dispatch events, nothing else.
//
// One logical writer: the mutex exists so UI goroutines can call Dispatch
// and Snapshot safely, but dispatches are serialized - there are never two
// reducer applications in flight.
type Store struct {
	mu          sync.Mutex
	reducer     *engine.Reducer
	adapter     *storage.Adapter
	journal     *journal.Journal
	clock       *engine.Clock
	tokens      engine.TokenGenerator
	now         func() time.Time
	log         *slog.Logger
	state       engine.GameState
	initialized bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithJournal attaches an event journal. Appends are best effort; a
// journal failure never blocks or fails a dispatch.
func WithJournal(j *journal.Journal) StoreOption {
	return func(s *Store) { s.journal = j }
}

// WithClock overrides the logical clock, letting a caller resume seq
// numbering on top of an existing journal.
func WithClock(c *engine.Clock) StoreOption {
	return func(s *Store) { s.clock = c }
}

// WithTokens overrides the dispatch token generator. Tests use
// engine.NewFixedGenerator for deterministic journals.
func WithTokens(g engine.TokenGenerator) StoreOption {
	return func(s *Store) { s.tokens = g }
}

// WithNow overrides the wall-time source for journal timestamps.
func WithNow(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLogger overrides the logger.
func WithLogger(log *slog.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// NewStore builds a store in the initial state: catalog achievements all
// locked, score zero, IsLoading true until Start completes.
func NewStore(reducer *engine.Reducer, adapter *storage.Adapter, opts ...StoreOption) *Store {
	s := &Store{
		reducer: reducer,
		adapter: adapter,
		clock:   engine.NewClock(),
		tokens:  engine.UUIDv7Generator{},
		now:     time.Now,
		log:     slog.Default(),
		state:   reducer.InitialState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start performs the initial storage read. A non-nil load replaces the
// progress; a nil load persists the initial state so the on-disk schema is
// established for every later write. Either way IsLoading flips to false
// and the persist-on-change loop is armed.
//
// Start never hangs and never fails: an unavailable storage engine
// degrades to the fresh-install path.
func (s *Store) Start(ctx context.Context) {
	loaded := s.adapter.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	if loaded != nil {
		s.log.Info("progress loaded from storage",
			"score", loaded.TotalScore,
			"sections", len(loaded.CompletedSections),
			"activities", len(loaded.CompletedActivities),
		)
		s.state = s.reducer.Apply(s.state, engine.LoadProgress{Progress: *loaded})
	} else {
		s.log.Info("no saved progress, starting fresh")
		if !s.adapter.Save(s.state.Progress) {
			// Not fatal: the user can still play, the next successful
			// save establishes the schema.
			s.state = s.reducer.Apply(s.state, engine.SetStorageError{Message: storageErrorMessage})
		}
	}

	s.state.IsLoading = false
	s.initialized = true
}

// Dispatch applies an event and returns the resulting snapshot.
//
// After any change to the progress aggregate the new snapshot is persisted
// - but only once Start has completed, so a not-yet-read storage record is
// never clobbered by the blank initial state. A failed persist surfaces as
// a StorageError on the state; a successful one clears it.
//
// Calling Dispatch on a nil store is a programming-contract violation and
// panics; every runtime failure mode is handled internally.
func (s *Store) Dispatch(ctx context.Context, ev engine.Event) engine.GameState {
	if s == nil {
		panic("game: Dispatch on a nil Store")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.clock.Next()
	token := s.tokens.Generate()
	prev := s.state
	s.state = s.reducer.Apply(s.state, ev)

	s.appendJournal(ctx, seq, token, ev)

	if s.initialized && !reflect.DeepEqual(prev.Progress, s.state.Progress) {
		if s.adapter.Save(s.state.Progress) {
			if s.state.StorageError != "" {
				s.state = s.reducer.Apply(s.state, engine.SetStorageError{})
			}
		} else {
			s.log.Warn("progress could not be saved", "token", token)
			s.state = s.reducer.Apply(s.state, engine.SetStorageError{Message: storageErrorMessage})
		}
	}

	return s.state.Clone()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() engine.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// appendJournal records a dispatched event. Best effort by design.
func (s *Store) appendJournal(ctx context.Context, seq int64, token string, ev engine.Event) {
	if s.journal == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		s.log.Warn("event could not be journaled", "kind", ev.Kind(), "error", err)
		return
	}
	rec := journal.Record{
		Seq:        seq,
		Token:      token,
		Kind:       ev.Kind(),
		Payload:    string(payload),
		RecordedAt: progress.FormatTime(s.now()),
	}
	if err := s.journal.Append(ctx, rec); err != nil {
		s.log.Warn("journal append failed", "seq", seq, "error", err)
	}
}
