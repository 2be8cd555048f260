package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
)

var _ ports.Transactor = (*Transactor)(nil)

type txKey struct{}

// Transactor serializes units of work against the in-memory stores. It cannot roll back, so
// callers order their steps to fail before the first write.
type Transactor struct {
	mu sync.Mutex
}

func NewTransactor() *Transactor {
	return &Transactor{}
}

// WithinTransaction runs fn under the transactor lock. Nested calls reuse the outer unit.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == t {
		return fn(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, t))
}
