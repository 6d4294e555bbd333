package gateway

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/kingrea/tirereq/internal/request"
)

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestSimulatedNeverFailsAtZeroRate(t *testing.T) {
	gw := NewSimulated(Settings{}, WithSleep(noSleep), WithRand(rand.New(rand.NewSource(1))))
	ctx := context.Background()
	for i := 0; i < 200; i++ {
		if err := gw.Submit(ctx, request.NewDraft()); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if err := gw.Update(ctx, int64(i), request.Submitted{}); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
}

func TestSimulatedAlwaysFailsAtFullRate(t *testing.T) {
	gw := NewSimulated(Settings{SubmitFailureRate: 1, ItemFailureRate: 1}, WithSleep(noSleep))
	err := gw.Delete(context.Background(), 7)
	var status *StatusError
	if !errors.As(err, &status) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if status.Op != OpDelete || status.ID != 7 || status.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status error: %+v", status)
	}
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("expected errors.Is(err, ErrBackend)")
	}
	if got := err.Error(); got != "DELETE /api/request/7 failed: 500 Internal Server Error" {
		t.Fatalf("error text = %q", got)
	}
}

func TestSimulatedWaitsForLatency(t *testing.T) {
	var slept time.Duration
	gw := NewSimulated(Settings{Latency: 250 * time.Millisecond}, WithSleep(func(ctx context.Context, d time.Duration) error {
		slept = d
		return nil
	}))
	if err := gw.Submit(context.Background(), request.NewDraft()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if slept != 250*time.Millisecond {
		t.Fatalf("slept %s", slept)
	}
}

func TestSimulatedCancelledContext(t *testing.T) {
	gw := NewSimulated(Settings{Latency: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := gw.Update(ctx, 3, request.Submitted{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConfigureClampsRates(t *testing.T) {
	gw := NewSimulated(DefaultSettings(), WithSleep(noSleep))
	gw.Configure(Settings{Latency: -time.Second, SubmitFailureRate: 3, ItemFailureRate: -1})
	got := gw.Settings()
	if got.Latency != 0 || got.SubmitFailureRate != 1 || got.ItemFailureRate != 0 {
		t.Fatalf("settings = %+v", got)
	}
	if err := gw.Submit(context.Background(), request.NewDraft()); err == nil {
		t.Fatalf("expected submit to fail after reconfigure")
	}
}

func TestFuncGatewayDefaultsToSuccess(t *testing.T) {
	var gw Gateway = Func{DeleteFunc: func(ctx context.Context, id int64) error {
		return &StatusError{Op: OpDelete, ID: id, Code: http.StatusInternalServerError}
	}}
	if err := gw.Submit(context.Background(), request.NewDraft()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := gw.Delete(context.Background(), 1); err == nil {
		t.Fatalf("expected delete failure")
	}
}
