// internal/gateway/gateway.go
//
// The gateway is the backend capability the request form talks to. No real
// transport exists; Simulated stands in for it with a fixed delay and random
// failures, and tests inject scripted implementations.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kingrea/tirereq/internal/request"
)

// Op identifies a backend call.
type Op string

const (
	OpSubmit Op = "submit"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Route returns the intended REST route for the call.
func (o Op) Route(id int64) string {
	switch o {
	case OpSubmit:
		return "POST /api/submit-request"
	case OpUpdate:
		return fmt.Sprintf("PUT /api/request/%d", id)
	case OpDelete:
		return fmt.Sprintf("DELETE /api/request/%d", id)
	}
	return string(o)
}

// Gateway performs the three backend calls. A nil error implies status 200.
type Gateway interface {
	Submit(ctx context.Context, draft request.Draft) error
	Update(ctx context.Context, id int64, req request.Submitted) error
	Delete(ctx context.Context, id int64) error
}

// ErrBackend is matched by every StatusError.
var ErrBackend = errors.New("backend error")

// StatusError reports a non-2xx outcome for a call.
type StatusError struct {
	Op   Op
	ID   int64
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", e.Op.Route(e.ID), e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error { return ErrBackend }

// Func adapts plain functions into a Gateway. Nil members succeed.
type Func struct {
	SubmitFunc func(ctx context.Context, draft request.Draft) error
	UpdateFunc func(ctx context.Context, id int64, req request.Submitted) error
	DeleteFunc func(ctx context.Context, id int64) error
}

func (f Func) Submit(ctx context.Context, draft request.Draft) error {
	if f.SubmitFunc == nil {
		return nil
	}
	return f.SubmitFunc(ctx, draft)
}

func (f Func) Update(ctx context.Context, id int64, req request.Submitted) error {
	if f.UpdateFunc == nil {
		return nil
	}
	return f.UpdateFunc(ctx, id, req)
}

func (f Func) Delete(ctx context.Context, id int64) error {
	if f.DeleteFunc == nil {
		return nil
	}
	return f.DeleteFunc(ctx, id)
}
