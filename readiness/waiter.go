// Package readiness blocks until the target application's expected port
// exists in the graph.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/jackroute/interfaces"
	"github.com/opd-ai/jackroute/names"
	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is the delay between two lookups.
const DefaultPollInterval = 250 * time.Millisecond

// ErrNotReady indicates a bounded wait gave up before the port appeared.
var ErrNotReady = errors.New("expected port did not appear")

// Waiter polls the graph's name lookup. The zero MaxAttempts waits forever:
// the target's startup time is unpredictable, and a target that never
// registers the port keeps the activation blocked.
type Waiter struct {
	graph        interfaces.IGraphServer
	interval     time.Duration
	maxAttempts  int
	timeProvider TimeProvider
	normalizer   names.Normalizer
}

// Option configures a Waiter.
type Option func(*Waiter)

// WithPollInterval overrides DefaultPollInterval. Non-positive values are
// ignored.
func WithPollInterval(d time.Duration) Option {
	return func(w *Waiter) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithMaxAttempts bounds the number of lookups. Zero or less means no bound.
func WithMaxAttempts(n int) Option {
	return func(w *Waiter) {
		if n < 0 {
			n = 0
		}
		w.maxAttempts = n
	}
}

// WithTimeProvider injects the clock used between polls.
func WithTimeProvider(tp TimeProvider) Option {
	return func(w *Waiter) {
		if tp != nil {
			w.timeProvider = tp
		}
	}
}

// WithNormalizer makes the waiter also accept a listed port whose normalized
// name or alias equals the normalized target. Servers that only resolve the
// raw "pw-<name>-<n>:port" form are then still detected.
func WithNormalizer(n names.Normalizer) Option {
	return func(w *Waiter) {
		w.normalizer = n
	}
}

// NewWaiter creates a waiter over graph.
func NewWaiter(graph interfaces.IGraphServer, opts ...Option) *Waiter {
	w := &Waiter{
		graph:        graph,
		interval:     DefaultPollInterval,
		timeProvider: RealTimeProvider{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Await returns once a lookup of name succeeds or, with WithNormalizer, once
// a listed port normalizes to name. attempts counts the lookups
// made, the successful one included. A bounded waiter returns ErrNotReady
// after MaxAttempts failed lookups; a cancelled context returns ctx.Err().
func (w *Waiter) Await(ctx context.Context, name string) (attempts int, err error) {
	logger := logrus.WithFields(logrus.Fields{
		"function":     "Waiter.Await",
		"port":         name,
		"interval":     w.interval.String(),
		"max_attempts": w.maxAttempts,
	})
	logger.Info("Waiting for target port")

	for {
		attempts++
		if found, ok := w.find(ctx, name); ok {
			logger.WithFields(logrus.Fields{
				"attempts": attempts,
				"found":    found,
			}).Info("Target port is ready")
			return attempts, nil
		}

		if w.maxAttempts > 0 && attempts >= w.maxAttempts {
			logger.WithField("attempts", attempts).Warn("Gave up waiting for target port")
			return attempts, fmt.Errorf("%w: %s after %d attempts", ErrNotReady, name, attempts)
		}

		select {
		case <-ctx.Done():
			return attempts, ctx.Err()
		case <-w.timeProvider.After(w.interval):
		}
	}
}

// find reports the server's name for the target, trying the server's own
// lookup first and then the normalized listing.
func (w *Waiter) find(ctx context.Context, name string) (string, bool) {
	if port, err := w.graph.LookupPort(ctx, name); err == nil {
		return port.Name, true
	}
	if !w.normalizer.PrefixMode() {
		return "", false
	}

	ports, err := w.graph.Ports(ctx)
	if err != nil {
		return "", false
	}
	want := w.normalizer.Normalize(name)
	for _, port := range ports {
		if w.normalizer.Normalize(port.Name) == want {
			return port.Name, true
		}
		for _, alias := range port.Aliases {
			if w.normalizer.Normalize(alias) == want {
				return port.Name, true
			}
		}
	}
	return "", false
}
