// Package breaker wraps sony/gobreaker with the failure policy used for
// external call sites: trip on short consecutive-failure bursts or on a
// sustained error rate.
package breaker

import (
	"time"

	"github.com/sony/gobreaker"
)

const (
	rollingInterval     = 60 * time.Second
	openTimeout         = 60 * time.Second
	consecutiveFailures = 3
	minRequests         = 20
	failureRateLimit    = 0.05
)

// Breaker is a circuit breaker for a single named dependency.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New returns a breaker for the named dependency.
func New(name string) *Breaker {
	st := gobreaker.Settings{Name: name}
	st.Interval = rollingInterval
	st.Timeout = openTimeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= consecutiveFailures {
			return true
		}
		if counts.Requests < minRequests {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) > failureRateLimit
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(st)}
}

// Do runs fn through the breaker, short-circuiting while it is open.
func (b *Breaker) Do(fn func() (string, error)) (string, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State returns the current breaker state name.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
