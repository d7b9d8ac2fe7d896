package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
)

// Querier lo cumplen *pgxpool.Pool y pgx.Tx; los repositorios funcionan con ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewRepos construye los repositorios sobre q (pool para lecturas, tx dentro del TxRunner).
func NewRepos(q Querier) ports.Repos {
	return ports.Repos{
		Products:  NewProductRepository(q),
		Stock:     NewStockRepository(q),
		Sales:     NewSaleRepository(q),
		Movements: NewInventoryMovementRepository(q),
		Logs:      NewActivityLogRepository(q),
		Reports:   NewReportRepository(q),
		Users:     NewUserRepository(q),
	}
}
