// Package rotation spreads calls over a fixed set of credentials and fails
// over to the next one when a call errors.
package rotation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

var ErrNoCredentials = errors.New("no credentials configured")

// permanentError marks a failure that another credential would not fix.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent stops the failover loop and returns err unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type Ring[T any] struct {
	items []T
	next  atomic.Uint64
}

func NewRing[T any](items []T) *Ring[T] {
	copied := make([]T, len(items))
	copy(copied, items)
	return &Ring[T]{items: copied}
}

func (r *Ring[T]) Len() int {
	return len(r.items)
}

// Do advances the shared cursor once and then tries each item, in order,
// at most once. onFailover runs before every retry with the failed index.
func (r *Ring[T]) Do(ctx context.Context, fn func(ctx context.Context, item T) error, onFailover func(index int, err error)) error {
	n := len(r.items)
	if n == 0 {
		return ErrNoCredentials
	}

	start := int((r.next.Add(1) - 1) % uint64(n))

	var lastErr error
	for attempt := 0; attempt < n; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		idx := (start + attempt) % n
		err := fn(ctx, r.items[idx])
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		lastErr = err
		if attempt < n-1 && onFailover != nil {
			onFailover(idx, err)
		}
	}

	return fmt.Errorf("all %d credentials failed: %w", n, lastErr)
}
