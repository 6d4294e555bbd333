// internal/review/store.go
//
// Store is the single owner of review state: the submission pipeline, the list of
// accepted requests, the editing session and the per-row action bookkeeping. The
// TUI starts an operation, runs the returned op against the gateway in a tea.Cmd,
// and hands the outcome back through the matching Finish method.

package review

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kingrea/tirereq/internal/request"
)

// SubmitState tracks the submission pipeline.
type SubmitState int

const (
	Idle SubmitState = iota
	Submitting
	Accepted
	Rejected
)

func (s SubmitState) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "idle"
	}
}

// Policy holds the form behaviours that are left to configuration.
type Policy struct {
	// ClearOnSubmit resets the form after an accepted submission.
	ClearOnSubmit bool
	// RevalidateOnSave runs the field rules over an edit before saving it.
	RevalidateOnSave bool
}

// Editing is the open edit session for one review-list entry.
type Editing struct {
	ItemID int64
	Draft  request.Submitted
	Errors request.ValidationErrors
}

// SubmitOp is an accepted submit awaiting the gateway.
type SubmitOp struct {
	ID    uuid.UUID
	Draft request.Draft
}

// ItemOp is a row update or delete awaiting the gateway.
type ItemOp struct {
	ID      uuid.UUID
	Action  Action
	ItemID  int64
	Request request.Submitted
}

// Store holds review state. All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	clock  func() time.Time
	logger *log.Logger
	policy Policy

	state       SubmitState
	lastOutcome SubmitState
	pending     *SubmitOp
	fieldErrs   request.ValidationErrors
	submitErr   *SubmissionError

	items    []request.Submitted
	lastID   int64
	editing  *Editing
	inFlight map[int64]ItemOp
	itemErr  *ItemError
}

// Option customizes a Store.
type Option func(*Store)

// WithClock injects the time source used for ids and timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPolicy sets the initial form policy.
func WithPolicy(policy Policy) Option {
	return func(s *Store) {
		s.policy = policy
	}
}

// NewStore returns an idle store with an empty review list.
func NewStore(opts ...Option) *Store {
	s := &Store{
		clock:    time.Now,
		inFlight: make(map[int64]ItemOp),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Policy returns the active form policy.
func (s *Store) Policy() Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// SetPolicy replaces the form policy. It applies to later operations only.
func (s *Store) SetPolicy(policy Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = policy
}

// State reports whether a submission is pending.
func (s *Store) State() SubmitState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastOutcome reports how the most recent submission resolved, or Idle if none has.
func (s *Store) LastOutcome() SubmitState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutcome
}

// Submitting reports whether the submit control should be disabled.
func (s *Store) Submitting() bool {
	return s.State() == Submitting
}

// FieldErrors returns the violations from the latest submit attempt.
func (s *Store) FieldErrors() request.ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(request.ValidationErrors, len(s.fieldErrs))
	for k, v := range s.fieldErrs {
		out[k] = v
	}
	return out
}

// SubmitError returns the banner error from the last rejected submit, if any.
func (s *Store) SubmitError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitErr == nil {
		return nil
	}
	return s.submitErr
}

// Items returns a deep copy of the review list in submission order.
func (s *Store) Items() []request.Submitted {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]request.Submitted, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

// Item returns a copy of the entry with the given id.
func (s *Store) Item(id int64) (request.Submitted, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return request.Submitted{}, false
	}
	return s.items[idx].Clone(), true
}

// Editing returns a copy of the open edit session.
func (s *Store) Editing() (Editing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return Editing{}, false
	}
	e := *s.editing
	e.Draft = e.Draft.Clone()
	if e.Errors != nil {
		errs := make(request.ValidationErrors, len(e.Errors))
		for k, v := range e.Errors {
			errs[k] = v
		}
		e.Errors = errs
	}
	return e, true
}

// InFlight returns the pending action for a row, if any.
func (s *Store) InFlight(id int64) (Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.inFlight[id]
	return op.Action, ok
}

// ItemError returns the single row-level error, if any.
func (s *Store) ItemError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.itemErr == nil {
		return nil
	}
	return s.itemErr
}

func (s *Store) indexOf(id int64) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// nextID derives an id from the clock, bumped when the clock has not advanced.
func (s *Store) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) debug(msg string, keyvals ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, keyvals...)
	}
}

func (s *Store) info(msg string, keyvals ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, keyvals...)
	}
}

func (s *Store) warn(msg string, keyvals ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, keyvals...)
	}
}
