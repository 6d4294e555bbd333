package review

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kingrea/tirereq/internal/request"
)

// Submit validates the draft and, when it passes, moves the pipeline to
// Submitting. The returned op carries a snapshot the form can keep editing past.
// A failed validation returns request.ValidationErrors and leaves the state Idle.
func (s *Store) Submit(d request.Draft) (SubmitOp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Submitting {
		return SubmitOp{}, ErrSubmitInProgress
	}
	s.submitErr = nil
	s.fieldErrs = request.Validate(d)
	if len(s.fieldErrs) > 0 {
		s.debug("submit rejected by validation", "fields", len(s.fieldErrs))
		return SubmitOp{}, s.fieldErrs
	}

	op := SubmitOp{ID: uuid.New(), Draft: d.Clone()}
	s.pending = &op
	s.state = Submitting
	s.info("submit started", "op", op.ID, "vehicle", d.VehicleNo)
	return op, nil
}

// FinishSubmit applies the gateway outcome. On success the snapshot is appended
// to the review list and returned; on failure the list is untouched and a
// *SubmissionError is returned.
func (s *Store) FinishSubmit(op SubmitOp, gatewayErr error) (request.Submitted, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil || s.pending.ID != op.ID {
		return request.Submitted{}, fmt.Errorf("%w: submit %s", ErrStaleOp, op.ID)
	}
	s.pending = nil
	s.state = Idle

	if gatewayErr != nil {
		s.lastOutcome = Rejected
		s.submitErr = &SubmissionError{Cause: gatewayErr}
		s.warn("submit failed", "op", op.ID, "err", gatewayErr)
		return request.Submitted{}, s.submitErr
	}

	now := s.clock()
	entry := request.Freeze(op.Draft, s.nextID(now), now)
	s.items = append(s.items, entry)
	s.lastOutcome = Accepted
	s.info("submit accepted", "op", op.ID, "id", entry.ID)
	return entry.Clone(), nil
}
