package pipeline

import (
	"context"
	"time"
)

// Default pacing between documents.
const (
	DefaultSuccessDelay = 5 * time.Second
	DefaultFailureDelay = 10 * time.Second
)

// FixedPacer waits a fixed delay after each document, with a longer delay
// after failures so the analyzer gets time to recover.
type FixedPacer struct {
	successDelay time.Duration
	failureDelay time.Duration
}

// NewFixedPacer creates a pacer with the given delays; non-positive values
// fall back to the defaults.
func NewFixedPacer(successDelay, failureDelay time.Duration) *FixedPacer {
	if successDelay <= 0 {
		successDelay = DefaultSuccessDelay
	}
	if failureDelay <= 0 {
		failureDelay = DefaultFailureDelay
	}
	return &FixedPacer{
		successDelay: successDelay,
		failureDelay: failureDelay,
	}
}

// AfterSuccess pauses for the success delay.
func (p *FixedPacer) AfterSuccess(ctx context.Context) error {
	return pause(ctx, p.successDelay)
}

// AfterFailure pauses for the failure delay.
func (p *FixedPacer) AfterFailure(ctx context.Context) error {
	return pause(ctx, p.failureDelay)
}

func pause(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
