// Package library holds the in-memory book collection and keeps it in step
// with the remote library service.
//
// The Store has a single owner. Local state only changes after the service
// confirms a call; a failed call leaves the collection exactly as it was.
// Event-loop callers use the two-phase API (BeginRefresh/Fetch/ApplyRefresh,
// Prepare/Run/Apply) so that I/O can run off the owner goroutine while the
// reconciliation happens on it. Synchronous callers use Refresh, Add, Edit and
// Remove.
package library

import (
	"context"
	"errors"
	"slices"
	"time"

	"booklib/internal/books"
	"booklib/internal/logging"

	"go.uber.org/zap"
)

// Fallback messages for errors that carry no text.
const (
	MsgLoadFailed   = "Failed to load books"
	MsgSaveFailed   = "Save failed"
	MsgDeleteFailed = "Delete failed"
)

// ErrBusy is returned when a mutation is started while another is pending.
var ErrBusy = errors.New("another change is still in progress")

// API is the remote resource the store synchronizes with.
type API interface {
	List(ctx context.Context) ([]books.Book, error)
	Create(ctx context.Context, in books.Input) (books.Book, error)
	Update(ctx context.Context, id int64, in books.Input) (books.Book, error)
	Delete(ctx context.Context, id int64) error
}

// Phase is the mutation state. Succeeded and Failed are reported through
// State.Last; the phase itself always returns to Idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
)

// Result is the outcome of the most recent completed mutation.
type Result int

const (
	ResultNone Result = iota
	ResultSucceeded
	ResultFailed
)

// State is a snapshot of the store.
type State struct {
	Books    []books.Book
	Loading  bool
	Phase    Phase
	Last     Result
	Err      string
	Revision uint64 // bumped whenever Books changes
}

// Store owns the book collection.
type Store struct {
	api    API
	state  State
	logger *zap.Logger
	trail  *logging.AuditLogger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger overrides the store logger.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithAudit records changes through a session-scoped audit logger.
func WithAudit(a *logging.AuditLogger) StoreOption {
	return func(s *Store) { s.trail = a }
}

// NewStore creates an empty store backed by api.
func NewStore(api API, opts ...StoreOption) *Store {
	s := &Store{
		api:    api,
		logger: logging.Get(logging.CategoryStore),
		trail:  logging.Audit(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot. The Books slice is a copy.
func (s *Store) State() State {
	st := s.state
	st.Books = slices.Clone(s.state.Books)
	return st
}

// Books returns the collection in display order. Callers must not modify it.
func (s *Store) Books() []books.Book { return s.state.Books }

// Loading reports whether a refresh is in flight.
func (s *Store) Loading() bool { return s.state.Loading }

// Mutating reports whether a create, update or delete is pending.
func (s *Store) Mutating() bool { return s.state.Phase == PhasePending }

// Err returns the global error message, or "".
func (s *Store) Err() string { return s.state.Err }

// Revision changes whenever the collection changes.
func (s *Store) Revision() uint64 { return s.state.Revision }

// Last returns the result of the most recent completed mutation.
func (s *Store) Last() Result { return s.state.Last }

// Find returns the book with the given id.
func (s *Store) Find(id int64) (books.Book, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return books.Book{}, false
	}
	return s.state.Books[i], true
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.state.Books, func(b books.Book) bool { return b.ID == id })
}

// =============================================================================
// REFRESH
// =============================================================================

// RefreshResult is the completion of a list call.
type RefreshResult struct {
	Books   []books.Book
	Err     error
	Elapsed time.Duration
}

// BeginRefresh marks the store as loading and clears the global error.
func (s *Store) BeginRefresh() {
	s.state.Loading = true
	s.state.Err = ""
	s.logger.Debug("refresh started")
}

// Fetch performs the list call. It reads no store state and may run on any
// goroutine.
func (s *Store) Fetch(ctx context.Context) RefreshResult {
	start := time.Now()
	list, err := s.api.List(ctx)
	return RefreshResult{Books: list, Err: err, Elapsed: time.Since(start)}
}

// ApplyRefresh replaces the collection on success or records the error on
// failure. Loading is cleared either way.
func (s *Store) ApplyRefresh(r RefreshResult) error {
	s.state.Loading = false
	s.trail.Refresh(len(r.Books), r.Elapsed, r.Err)
	if r.Err != nil {
		s.state.Err = message(r.Err, MsgLoadFailed)
		s.logger.Warn("refresh failed", zap.Error(r.Err))
		return r.Err
	}
	s.state.Books = slices.Clone(r.Books)
	s.state.Revision++
	s.logger.Debug("refresh applied", zap.Int("books", len(r.Books)))
	return nil
}

// Refresh reloads the whole collection from the service.
func (s *Store) Refresh(ctx context.Context) error {
	s.BeginRefresh()
	return s.ApplyRefresh(s.Fetch(ctx))
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Kind identifies a mutation.
type Kind int

const (
	KindCreate Kind = iota
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Mutation describes one change to the remote collection.
type Mutation struct {
	Kind  Kind
	ID    int64
	Input books.Input
}

// Create returns a mutation adding a new book.
func Create(in books.Input) Mutation { return Mutation{Kind: KindCreate, Input: in} }

// Update returns a mutation replacing book id.
func Update(id int64, in books.Input) Mutation { return Mutation{Kind: KindUpdate, ID: id, Input: in} }

// Delete returns a mutation removing book id.
func Delete(id int64) Mutation { return Mutation{Kind: KindDelete, ID: id} }

// Pending is a validated mutation whose remote call has not run yet.
type Pending struct {
	api API
	m   Mutation
}

// Mutation returns the normalized mutation.
func (p Pending) Mutation() Mutation { return p.m }

// Outcome is the completion of a mutation's remote call.
type Outcome struct {
	Mutation Mutation
	Book     books.Book // returned record for create and update
	Err      error
	Elapsed  time.Duration
}

// Prepare validates m and moves the store to PhasePending. Validation
// failures return a *books.ValidationError and leave the store untouched,
// including the global error slot. ErrBusy is returned while another
// mutation is pending.
func (s *Store) Prepare(m Mutation) (Pending, error) {
	if s.Mutating() {
		return Pending{}, ErrBusy
	}

	if m.Kind != KindDelete {
		in, err := m.Input.Validate()
		if err != nil {
			return Pending{}, err
		}
		m.Input = in
	}

	s.state.Phase = PhasePending
	s.state.Err = ""
	s.logger.Debug("mutation pending", zap.Stringer("kind", m.Kind), zap.Int64("id", m.ID))
	return Pending{api: s.api, m: m}, nil
}

// Run performs the remote call. It reads no store state and may run on any
// goroutine.
func (p Pending) Run(ctx context.Context) Outcome {
	o := Outcome{Mutation: p.m}
	start := time.Now()
	switch p.m.Kind {
	case KindCreate:
		o.Book, o.Err = p.api.Create(ctx, p.m.Input)
	case KindUpdate:
		o.Book, o.Err = p.api.Update(ctx, p.m.ID, p.m.Input)
	case KindDelete:
		o.Err = p.api.Delete(ctx, p.m.ID)
	}
	o.Elapsed = time.Since(start)
	return o
}

// Apply reconciles the collection with a completed mutation and returns the
// store to PhaseIdle. It is applied unconditionally, even if the UI that
// started the mutation has gone away.
func (s *Store) Apply(o Outcome) error {
	s.state.Phase = PhaseIdle
	s.audit(o)

	if o.Err != nil {
		fallback := MsgSaveFailed
		if o.Mutation.Kind == KindDelete {
			fallback = MsgDeleteFailed
		}
		s.state.Err = message(o.Err, fallback)
		s.state.Last = ResultFailed
		s.logger.Warn("mutation failed",
			zap.Stringer("kind", o.Mutation.Kind),
			zap.Int64("id", o.Mutation.ID),
			zap.Error(o.Err))
		return o.Err
	}

	switch o.Mutation.Kind {
	case KindCreate:
		s.state.Books = slices.Insert(slices.Clone(s.state.Books), 0, o.Book)
	case KindUpdate:
		next := slices.Clone(s.state.Books)
		if i := s.indexOf(o.Mutation.ID); i >= 0 {
			next[i] = o.Book
		}
		s.state.Books = next
	case KindDelete:
		s.state.Books = slices.DeleteFunc(slices.Clone(s.state.Books), func(b books.Book) bool {
			return b.ID == o.Mutation.ID
		})
	}
	s.state.Revision++
	s.state.Last = ResultSucceeded
	s.logger.Debug("mutation applied",
		zap.Stringer("kind", o.Mutation.Kind),
		zap.Int64("id", o.Mutation.ID),
		zap.Int("books", len(s.state.Books)))
	return nil
}

// audit records o in the audit trail. It runs before the collection changes
// so that a deleted title can still be looked up.
func (s *Store) audit(o Outcome) {
	event := map[Kind]logging.AuditEventType{
		KindCreate: logging.AuditBookCreate,
		KindUpdate: logging.AuditBookUpdate,
		KindDelete: logging.AuditBookDelete,
	}[o.Mutation.Kind]

	id, title := o.Mutation.ID, o.Mutation.Input.Title
	switch {
	case o.Err == nil && o.Mutation.Kind != KindDelete:
		id, title = o.Book.ID, o.Book.Title
	case o.Mutation.Kind == KindDelete:
		if b, ok := s.Find(id); ok {
			title = b.Title
		}
	}
	s.trail.BookChange(event, id, title, o.Elapsed, o.Err)
}

func (s *Store) mutate(ctx context.Context, m Mutation) (Outcome, error) {
	p, err := s.Prepare(m)
	if err != nil {
		return Outcome{}, err
	}
	o := p.Run(ctx)
	return o, s.Apply(o)
}

// Add creates a book and prepends the server's record.
func (s *Store) Add(ctx context.Context, in books.Input) (books.Book, error) {
	o, err := s.mutate(ctx, Create(in))
	return o.Book, err
}

// Edit replaces book id in place, keeping its position.
func (s *Store) Edit(ctx context.Context, id int64, in books.Input) (books.Book, error) {
	o, err := s.mutate(ctx, Update(id, in))
	return o.Book, err
}

// Remove deletes book id.
func (s *Store) Remove(ctx context.Context, id int64) error {
	_, err := s.mutate(ctx, Delete(id))
	return err
}

func message(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
