package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// testProvider is a minimal mock for retry tests.
type testProvider struct {
	responses []*Response
	errors    []error
	calls     int
}

func (p *testProvider) Name() string { return "test" }

func (p *testProvider) Complete(ctx context.Context, req *CompletionRequest) (*Response, error) {
	idx := p.calls
	p.calls++
	if idx < len(p.errors) && p.errors[idx] != nil {
		return nil, p.errors[idx]
	}
	if idx < len(p.responses) {
		return p.responses[idx], nil
	}
	return &Response{Content: "default", StopReason: "end_turn"}, nil
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		JitterFraction: 0,
	}
}

func status(code int) error {
	return &StatusError{Provider: "test", StatusCode: code, Body: "body"}
}

func TestRetryProvider_SuccessFirstTry(t *testing.T) {
	inner := &testProvider{
		responses: []*Response{{Content: "ok", StopReason: "end_turn"}},
	}
	rp := NewRetryProvider(inner, fastRetryConfig())

	resp, err := rp.Complete(context.Background(), &CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("expected 'ok', got %q", resp.Content)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 call, got %d", inner.calls)
	}
}

func TestRetryProvider_RetryOnRateLimit(t *testing.T) {
	inner := &testProvider{
		errors:    []error{status(429), status(503), nil},
		responses: []*Response{nil, nil, {Content: "recovered"}},
	}
	rp := NewRetryProvider(inner, fastRetryConfig())

	resp, err := rp.Complete(context.Background(), &CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "recovered" {
		t.Errorf("expected 'recovered', got %q", resp.Content)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls, got %d", inner.calls)
	}
}

func TestRetryProvider_NoRetryOnClientError(t *testing.T) {
	inner := &testProvider{errors: []error{status(401)}}
	rp := NewRetryProvider(inner, fastRetryConfig())

	_, err := rp.Complete(context.Background(), &CompletionRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 call, got %d", inner.calls)
	}
}

func TestRetryProvider_ExhaustsRetries(t *testing.T) {
	inner := &testProvider{errors: []error{status(500), status(500), status(500), status(500)}}
	rp := NewRetryProvider(inner, fastRetryConfig())

	_, err := rp.Complete(context.Background(), &CompletionRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "max retries (3) exceeded") {
		t.Errorf("unexpected error: %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 500 {
		t.Errorf("expected wrapped StatusError, got %v", err)
	}
	if inner.calls != 4 {
		t.Errorf("expected 4 calls, got %d", inner.calls)
	}
}

func TestRetryProvider_ContextCancelled(t *testing.T) {
	inner := &testProvider{errors: []error{status(529), status(529)}}
	rp := NewRetryProvider(inner, RetryConfig{MaxRetries: 3, InitialBackoff: time.Hour, MaxBackoff: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rp.Complete(ctx, &CompletionRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{status(429), true},
		{status(502), true},
		{status(400), false},
		{&TransportError{Provider: "test", Err: fmt.Errorf("dial tcp: refused")}, true},
		{fmt.Errorf("wrapped: %w", status(503)), true},
		{fmt.Errorf("plain"), false},
	}
	for _, c := range cases {
		if got := IsRetryable(c.err); got != c.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestBackoff_CappedAtMax(t *testing.T) {
	rp := NewRetryProvider(&testProvider{}, RetryConfig{
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     30 * time.Millisecond,
	})
	if d := rp.backoff(0); d != 10*time.Millisecond {
		t.Errorf("expected 10ms, got %v", d)
	}
	if d := rp.backoff(5); d != 30*time.Millisecond {
		t.Errorf("expected cap of 30ms, got %v", d)
	}
}
