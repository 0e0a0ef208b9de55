package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State int

const (
	// Closed lets every call through.
	Closed State = iota
	// Open rejects calls until the cool-down elapses.
	Open
	// HalfOpen lets trial calls through to check whether the dependency recovered.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "Half-Open"
	default:
		return "Unknown"
	}
}

// ErrCircuitOpen is returned without running the call while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// neutralError carries an error the breaker returns without recording.
type neutralError struct {
	err error
}

func (e *neutralError) Error() string { return e.err.Error() }
func (e *neutralError) Unwrap() error { return e.err }

// Neutral marks err as unrelated to the dependency's health, e.g. a caller that gave up.
// Do returns the underlying error and counts the call as neither success nor failure.
func Neutral(err error) error {
	if err == nil {
		return nil
	}
	return &neutralError{err: err}
}

// CircuitBreaker guards calls to a flaky dependency.
type CircuitBreaker interface {
	// Do runs call unless the breaker is open, and records its outcome.
	Do(call func() error) error
	State() State
}

// Breaker is a consecutive-failure circuit breaker.
type Breaker struct {
	failureThreshold uint32
	successThreshold uint32
	cooldown         time.Duration
	now              func() time.Time

	mu        sync.Mutex
	state     State
	failures  uint32
	successes uint32
	openedAt  time.Time
	// trials counts in-flight half-open calls of the current generation.
	trials     uint32
	generation uint64
}

// New creates a Breaker that opens after failureThreshold consecutive failures, stays
// open for cooldown, then closes again after successThreshold consecutive half-open
// successes.
func New(failureThreshold, successThreshold uint32, cooldown time.Duration) *Breaker {
	if failureThreshold == 0 {
		failureThreshold = 1
	}
	if successThreshold == 0 {
		successThreshold = 1
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		cooldown:         cooldown,
		now:              time.Now,
		state:            Closed,
	}
}

// State returns the current state, moving Open to HalfOpen once the cool-down elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state
}

// Do runs call with the breaker's protection. While half-open, at most successThreshold
// calls run at once; the rest get ErrCircuitOpen. An error wrapped with Neutral is
// returned unwrapped and not recorded.
func (b *Breaker) Do(call func() error) error {
	b.mu.Lock()
	b.refresh()
	if b.state == Open {
		b.mu.Unlock()
		return ErrCircuitOpen
	}
	trial := b.state == HalfOpen
	if trial {
		if b.trials >= b.successThreshold {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.trials++
	}
	generation := b.generation
	b.mu.Unlock()

	err := call()

	b.mu.Lock()
	defer b.mu.Unlock()
	if trial && generation == b.generation {
		b.trials--
	}
	var neutral *neutralError
	switch {
	case errors.As(err, &neutral):
		return neutral.err
	case err != nil:
		b.onFailure()
	default:
		b.onSuccess()
	}
	return err
}

// refresh must be called with mu held.
func (b *Breaker) refresh() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cooldown {
		b.setState(HalfOpen)
		b.successes = 0
	}
}

func (b *Breaker) setState(s State) {
	b.state = s
	b.trials = 0
	b.generation++
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case HalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.setState(Closed)
			b.failures = 0
			b.successes = 0
		}
	case Closed:
		b.failures = 0
	}
}

func (b *Breaker) onFailure() {
	switch b.state {
	case HalfOpen:
		b.trip()
	case Closed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.trip()
		}
	}
}

func (b *Breaker) trip() {
	b.setState(Open)
	b.openedAt = b.now()
	b.failures = 0
	b.successes = 0
}
