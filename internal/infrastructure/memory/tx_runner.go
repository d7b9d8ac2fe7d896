package memory

import (
	"context"
	"fmt"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
)

// TxRunner implementa ports.TxRunner sobre el Store en memoria.
// Commit aplica todas las escrituras de la tx de forma atómica antes de soltar los bloqueos.
type TxRunner struct {
	store *Store
}

// NewTxRunner crea un TxRunner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn dentro de una transacción. Commit si fn devuelve nil; Rollback en otro caso.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ports.Repos) error) error {
	tx := &txSession{s: r.store, held: make(map[string]struct{})}
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()
	if err := fn(ctx, newRepos(tx)); err != nil {
		tx.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.rollback()
		return fmt.Errorf("commit cancelado: %w", err)
	}
	return tx.commit()
}
