package memory

import (
	"context"
	"sync"

	"geozone-backend/internal/domain"
)

// TransactionManager serializes units of work. There is no rollback; it only
// provides the mutual exclusion zone writes rely on.
type TransactionManager struct {
	mu sync.Mutex
}

func NewTransactionManager() domain.TransactionManager {
	return &TransactionManager{}
}

func (tm *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
