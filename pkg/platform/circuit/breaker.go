// Package circuit wraps sony/gobreaker with the options and state reporting
// casevault's outbound gateways share.
package circuit

import (
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"casevault/pkg/platform/sentinel"
)

type State string

const (
	StateClosed   State = "closed"
	StateHalfOpen State = "half-open"
	StateOpen     State = "open"
)

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

type config struct {
	failureThreshold uint32
	successThreshold uint32
	cooldown         time.Duration
	isSuccessful     func(err error) bool
	isExcluded       func(err error) bool
	onStateChange    func(name string, from, to State)
}

type Option func(*config)

// WithFailureThreshold sets consecutive failures needed to open the circuit.
func WithFailureThreshold(n uint32) Option {
	return func(c *config) { c.failureThreshold = n }
}

// WithSuccessThreshold sets how many half-open trial calls must succeed to close it.
func WithSuccessThreshold(n uint32) Option {
	return func(c *config) { c.successThreshold = n }
}

// WithCooldown sets how long the circuit stays open.
func WithCooldown(d time.Duration) Option {
	return func(c *config) { c.cooldown = d }
}

// WithSuccessClassifier marks errors that should not count as failures,
// e.g. the remote rejecting a request rather than being unreachable.
func WithSuccessClassifier(fn func(err error) bool) Option {
	return func(c *config) { c.isSuccessful = fn }
}

// WithExclusion marks errors that count as neither success nor failure.
func WithExclusion(fn func(err error) bool) Option {
	return func(c *config) { c.isExcluded = fn }
}

func WithOnStateChange(fn func(name string, from, to State)) Option {
	return func(c *config) { c.onStateChange = fn }
}

// Breaker guards calls returning T.
type Breaker[T any] struct {
	name string
	cb   *gobreaker.CircuitBreaker[T]
}

func New[T any](name string, opts ...Option) *Breaker[T] {
	cfg := config{
		failureThreshold: 5,
		successThreshold: 1,
		cooldown:         30 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.successThreshold,
		Timeout:     cfg.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.failureThreshold
		},
		IsSuccessful: cfg.isSuccessful,
		IsExcluded:   cfg.isExcluded,
	}
	if cfg.onStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.onStateChange(name, fromGobreaker(from), fromGobreaker(to))
		}
	}
	return &Breaker[T]{name: name, cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn unless the circuit is open. A rejected call returns an
// error wrapping sentinel.ErrUnavailable.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return res, fmt.Errorf("%s: %w: %w", b.name, sentinel.ErrUnavailable, err)
	}
	return res, err
}

func (b *Breaker[T]) Name() string { return b.name }

func (b *Breaker[T]) State() State { return fromGobreaker(b.cb.State()) }

func (b *Breaker[T]) IsOpen() bool { return b.State() == StateOpen }
