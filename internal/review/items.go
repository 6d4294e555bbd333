package review

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kingrea/tirereq/internal/request"
)

// BeginEdit opens an edit session on the given row, replacing any session on a
// different row. It refuses rows with a pending action, and refuses to abandon a
// session whose save is still pending.
func (s *Store) BeginEdit(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.itemErr = nil
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: #%d", ErrItemNotFound, id)
	}
	if _, busy := s.inFlight[id]; busy {
		return fmt.Errorf("%w: #%d", ErrActionInFlight, id)
	}
	if s.editing != nil && s.editing.ItemID != id {
		if _, busy := s.inFlight[s.editing.ItemID]; busy {
			return fmt.Errorf("%w: #%d", ErrActionInFlight, s.editing.ItemID)
		}
	}
	s.editing = &Editing{ItemID: id, Draft: s.items[idx].Clone()}
	s.debug("edit started", "id", id)
	return nil
}

// EditField merges one field into the session's draft copy.
func (s *Store) EditField(field request.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing == nil {
		return ErrNotEditing
	}
	if err := s.editing.Draft.Set(field, value); err != nil {
		return fmt.Errorf("review: %w", err)
	}
	if s.editing.Errors != nil {
		delete(s.editing.Errors, field)
	}
	return nil
}

// Save dispatches the session's draft copy as an update.
func (s *Store) Save() (ItemOp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.itemErr = nil
	if s.editing == nil {
		return ItemOp{}, ErrNotEditing
	}
	id := s.editing.ItemID
	if _, busy := s.inFlight[id]; busy {
		return ItemOp{}, fmt.Errorf("%w: #%d", ErrActionInFlight, id)
	}
	if s.policy.RevalidateOnSave {
		if errs := request.ValidateEdit(s.editing.Draft); len(errs) > 0 {
			s.editing.Errors = errs
			return ItemOp{}, errs
		}
	}
	s.editing.Errors = nil

	op := ItemOp{ID: uuid.New(), Action: ActionUpdate, ItemID: id, Request: s.editing.Draft.Clone()}
	s.inFlight[id] = op
	s.info("update started", "op", op.ID, "id", id)
	return op, nil
}

// FinishSave applies the update outcome. On failure the list and the session are
// left as they were so the user can retry.
func (s *Store) FinishSave(op ItemOp, gatewayErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.settle(op, ActionUpdate); err != nil {
		return err
	}
	if gatewayErr != nil {
		s.itemErr = &ItemError{Action: ActionUpdate, ID: op.ItemID, Cause: gatewayErr}
		s.warn("update failed", "op", op.ID, "id", op.ItemID, "err", gatewayErr)
		return s.itemErr
	}

	if idx := s.indexOf(op.ItemID); idx >= 0 {
		updated := op.Request.Clone()
		updated.ID = op.ItemID
		s.items[idx] = updated
	}
	if s.editing != nil && s.editing.ItemID == op.ItemID {
		s.editing = nil
	}
	s.info("update applied", "op", op.ID, "id", op.ItemID)
	return nil
}

// Cancel closes the edit session and clears the row error.
func (s *Store) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = nil
	s.itemErr = nil
}

// Delete dispatches removal of a row. Callers confirm with the user first.
func (s *Store) Delete(id int64) (ItemOp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.itemErr = nil
	idx := s.indexOf(id)
	if idx < 0 {
		return ItemOp{}, fmt.Errorf("%w: #%d", ErrItemNotFound, id)
	}
	if _, busy := s.inFlight[id]; busy {
		return ItemOp{}, fmt.Errorf("%w: #%d", ErrActionInFlight, id)
	}
	op := ItemOp{ID: uuid.New(), Action: ActionDelete, ItemID: id, Request: s.items[idx].Clone()}
	s.inFlight[id] = op
	s.info("delete started", "op", op.ID, "id", id)
	return op, nil
}

// FinishDelete applies the delete outcome.
func (s *Store) FinishDelete(op ItemOp, gatewayErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.settle(op, ActionDelete); err != nil {
		return err
	}
	if gatewayErr != nil {
		s.itemErr = &ItemError{Action: ActionDelete, ID: op.ItemID, Cause: gatewayErr}
		s.warn("delete failed", "op", op.ID, "id", op.ItemID, "err", gatewayErr)
		return s.itemErr
	}

	if idx := s.indexOf(op.ItemID); idx >= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}
	if s.editing != nil && s.editing.ItemID == op.ItemID {
		s.editing = nil
	}
	s.info("delete applied", "op", op.ID, "id", op.ItemID)
	return nil
}

// settle releases the row's in-flight slot if it still belongs to op.
func (s *Store) settle(op ItemOp, action Action) error {
	current, ok := s.inFlight[op.ItemID]
	if !ok || current.ID != op.ID || current.Action != action {
		return fmt.Errorf("%w: %s #%d", ErrStaleOp, action, op.ItemID)
	}
	delete(s.inFlight, op.ItemID)
	return nil
}
