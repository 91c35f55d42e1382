package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrCircuitOpen is returned while a provider is failing fast
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerState represents the circuit breaker state
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// BreakerProvider wraps a Provider and stops calling it after a run of
// consecutive failures. After the cooldown, requests go through again in the
// half-open state; successThreshold successes close the circuit and any
// failure reopens it.
type BreakerProvider struct {
	inner            Provider
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	now              func() time.Time
	logger           logrus.FieldLogger

	mu          sync.Mutex
	state       BreakerState
	failures    int
	successes   int
	lastFailure time.Time
}

// NewBreakerProvider wraps inner with a circuit breaker
func NewBreakerProvider(inner Provider, failureThreshold int, cooldown time.Duration, logger logrus.FieldLogger) *BreakerProvider {
	return &BreakerProvider{
		inner:            inner,
		failureThreshold: failureThreshold,
		successThreshold: 2,
		cooldown:         cooldown,
		now:              time.Now,
		logger:           logger.WithField("provider", inner.Name()),
	}
}

// Name returns the wrapped provider's name
func (b *BreakerProvider) Name() string {
	return b.inner.Name()
}

// State returns the current breaker state
func (b *BreakerProvider) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState()
}

// Complete forwards to the wrapped provider unless the circuit is open.
// Cancellations by the caller do not count as failures.
func (b *BreakerProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	b.mu.Lock()
	state := b.currentState()
	b.mu.Unlock()
	if state == StateOpen {
		return nil, fmt.Errorf("%w for %s", ErrCircuitOpen, b.inner.Name())
	}

	resp, err := b.inner.Complete(ctx, req)
	switch {
	case err == nil:
		b.recordSuccess()
	case ctx.Err() != nil && errors.Is(err, context.Canceled):
	default:
		b.recordFailure()
	}
	return resp, err
}

// currentState moves an open breaker to half-open once the cooldown has
// passed. Callers hold b.mu.
func (b *BreakerProvider) currentState() BreakerState {
	if b.state == StateOpen && b.now().Sub(b.lastFailure) >= b.cooldown {
		b.state = StateHalfOpen
		b.failures = 0
		b.successes = 0
		b.logger.Info("circuit breaker half-open")
	}
	return b.state
}

func (b *BreakerProvider) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()

	switch b.state {
	case StateClosed:
		if b.failures >= b.failureThreshold {
			b.state = StateOpen
			b.logger.WithField("failures", b.failures).Warn("opening circuit breaker")
		}
	case StateHalfOpen:
		b.state = StateOpen
		b.logger.Warn("re-opening circuit breaker after failure in half-open state")
	}
}

func (b *BreakerProvider) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes++

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		if b.successes >= b.successThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
			b.logger.Info("closing circuit breaker")
		}
	}
}
