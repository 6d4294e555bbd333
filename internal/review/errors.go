package review

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmitInProgress rejects a submit while another is awaiting the gateway.
	ErrSubmitInProgress = errors.New("review: submission already in progress")
	// ErrActionInFlight rejects a row action while another is pending for that row.
	ErrActionInFlight = errors.New("review: action already in flight for request")
	// ErrNotEditing is returned by edit operations when no session is open.
	ErrNotEditing = errors.New("review: no request is being edited")
	// ErrItemNotFound is returned when a request id is not in the review list.
	ErrItemNotFound = errors.New("review: request not found")
	// ErrStaleOp is returned when a completion arrives for an op the store no
	// longer tracks.
	ErrStaleOp = errors.New("review: stale operation")
)

// SubmitFailureMessage is shown in the banner when the gateway rejects a submit.
const SubmitFailureMessage = "Submission failed. Please try again."

// SubmissionError reports a rejected submit.
type SubmissionError struct {
	Cause error
}

func (e *SubmissionError) Error() string { return SubmitFailureMessage }

func (e *SubmissionError) Unwrap() error { return e.Cause }

// Action names a row-level operation.
type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ItemError reports a failed update or delete of one request.
type ItemError struct {
	Action Action
	ID     int64
	Cause  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("Failed to %s request #%d: %v", e.Action, e.ID, e.Cause)
}

func (e *ItemError) Unwrap() error { return e.Cause }
