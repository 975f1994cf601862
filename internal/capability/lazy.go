// Package capability holds lazily initialized handles to external ML capabilities.
package capability

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnavailable reports that a capability could not be initialized.
var ErrUnavailable = errors.New("capability unavailable")

// Lazy initializes a value on first use. A successful result is cached for the
// lifetime of the handle; a failed one is not, so the next Get retries.
type Lazy[T any] struct {
	name string
	init func(ctx context.Context) (T, error)

	mu    sync.Mutex
	ready bool
	value T
}

// NewLazy returns a handle that calls init on demand.
func NewLazy[T any](name string, init func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{name: name, init: init}
}

// Ready wraps an already constructed value.
func Ready[T any](name string, v T) *Lazy[T] {
	return &Lazy[T]{name: name, ready: true, value: v}
}

// Disabled returns a handle that always reports ErrUnavailable with reason.
func Disabled[T any](name, reason string) *Lazy[T] {
	return NewLazy(name, func(context.Context) (T, error) {
		var zero T
		return zero, errors.New(reason)
	})
}

// Name identifies the capability in logs.
func (l *Lazy[T]) Name() string { return l.name }

// Get returns the initialized value or an error wrapping ErrUnavailable.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready {
		return l.value, nil
	}
	v, err := l.init(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s: %v", ErrUnavailable, l.name, err)
	}
	l.value, l.ready = v, true
	return v, nil
}
