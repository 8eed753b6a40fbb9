package invoke

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// testCallback is a simple callback for testing.
type testCallback struct {
	fn func(ctx context.Context, payload any) error
}

func (c *testCallback) Invoke(ctx context.Context, payload any) error {
	return c.fn(ctx, payload)
}

func newTestCallback(fn func(ctx context.Context, payload any) error) Callback {
	return &testCallback{fn: fn}
}

func TestRun_Success(t *testing.T) {
	var called bool
	var receivedPayload any

	cb := newTestCallback(func(ctx context.Context, payload any) error {
		called = true
		receivedPayload = payload
		return nil
	})

	result := Run(context.Background(), cb, "test-payload")

	if result.Failed() {
		t.Errorf("expected success, got %+v", result)
	}
	if !called {
		t.Error("callback was not called")
	}
	if receivedPayload != "test-payload" {
		t.Errorf("expected payload 'test-payload', got %v", receivedPayload)
	}
}

func TestRun_Error(t *testing.T) {
	expectedErr := errors.New("callback error")

	cb := newTestCallback(func(ctx context.Context, payload any) error {
		return expectedErr
	})

	result := Run(context.Background(), cb, nil)

	if !result.Failed() {
		t.Error("expected failure")
	}
	if !errors.Is(result.Err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, result.Err)
	}
	if result.Panicked {
		t.Error("expected no panic")
	}
}

func TestRun_Panic(t *testing.T) {
	cb := newTestCallback(func(ctx context.Context, payload any) error {
		panic("callback panic")
	})

	result := Run(context.Background(), cb, nil)

	if !result.Panicked {
		t.Fatal("expected panic to be captured")
	}
	if result.PanicValue != "callback panic" {
		t.Errorf("expected panic value 'callback panic', got %v", result.PanicValue)
	}
	if len(result.PanicStack) == 0 {
		t.Error("expected non-empty panic stack")
	}
	if !strings.Contains(string(result.PanicStack), "goroutine") {
		t.Error("expected panic stack to contain a stack trace")
	}
}

func TestRun_ContextPassedThrough(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "value")

	var got any
	cb := newTestCallback(func(ctx context.Context, payload any) error {
		got = ctx.Value(ctxKey{})
		return nil
	})

	Run(ctx, cb, nil)

	if got != "value" {
		t.Errorf("expected context value to pass through, got %v", got)
	}
}

func TestResult_Failed(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		expected bool
	}{
		{"success", Result{}, false},
		{"error", Result{Err: errors.New("error")}, true},
		{"panic", Result{Panicked: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Failed(); got != tt.expected {
				t.Errorf("Failed() = %v, want %v", got, tt.expected)
			}
		})
	}
}
