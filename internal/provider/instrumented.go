package provider

import (
	"context"
	"time"

	"github.com/stxkxs/bluebot/internal/telemetry"
)

// Instrumented records Prometheus metrics for every call to the wrapped provider.
type Instrumented struct {
	inner Provider
}

// NewInstrumented wraps p with call metrics.
func NewInstrumented(p Provider) *Instrumented {
	return &Instrumented{inner: p}
}

func (i *Instrumented) Name() string { return i.inner.Name() }

func (i *Instrumented) Complete(ctx context.Context, req *CompletionRequest) (*Response, error) {
	start := time.Now()
	resp, err := i.inner.Complete(ctx, req)
	telemetry.ObserveModelCall(i.inner.Name(), start, err)
	return resp, err
}
