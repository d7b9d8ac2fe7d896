package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
)

// lockTable bloqueos exclusivos por clave ("product:<id>", "sale:<id>").
// Cada clave es un canal de capacidad 1: enviar adquiere, recibir libera.
type lockTable struct {
	mu   sync.Mutex
	rows map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{rows: make(map[string]chan struct{})}
}

func (l *lockTable) row(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.rows[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.rows[key] = ch
	}
	return ch
}

// acquire espera el bloqueo hasta timeout; al vencer devuelve *domain.ContentionError.
func (l *lockTable) acquire(ctx context.Context, key string, timeout time.Duration) error {
	ch := l.row(key)
	select {
	case ch <- struct{}{}:
		return nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return &domain.ContentionError{Resource: key, Err: context.DeadlineExceeded}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *lockTable) release(key string) {
	select {
	case <-l.row(key):
	default:
	}
}
