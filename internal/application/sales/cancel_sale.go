package sales

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/audit"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/inventory"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// CancelSaleUseCase revierte una venta: devuelve el stock de cada línea con un
// movimiento de entrada y marca la venta como cancelada, todo en una transacción.
type CancelSaleUseCase struct {
	txRunner ports.TxRunner
	guard    *inventory.StockGuard
	audit    *audit.Recorder
	clock    ports.Clock
	retry    inventory.RetryPolicy
	log      zerolog.Logger
}

// NewCancelSaleUseCase construye el caso de uso.
func NewCancelSaleUseCase(
	txRunner ports.TxRunner,
	guard *inventory.StockGuard,
	recorder *audit.Recorder,
	clock ports.Clock,
	retry inventory.RetryPolicy,
	log zerolog.Logger,
) *CancelSaleUseCase {
	return &CancelSaleUseCase{
		txRunner: txRunner,
		guard:    guard,
		audit:    recorder,
		clock:    clock,
		retry:    retry,
		log:      log,
	}
}

// CancelSale cancela saleID en nombre de actingUserID. permitted lo decide la capa de
// autorización; si es false se rechaza sin efectos.
func (uc *CancelSaleUseCase) CancelSale(ctx context.Context, saleID, actingUserID string, permitted bool) (*entity.Sale, error) {
	if !permitted {
		return nil, fmt.Errorf("cancelar venta %s: %w", saleID, domain.ErrForbidden)
	}
	if saleID == "" {
		return nil, domain.Invalid("sale_id", "la venta es obligatoria")
	}
	if actingUserID == "" {
		return nil, domain.Invalid("user_id", "el usuario es obligatorio")
	}

	var sale *entity.Sale
	attempts, err := uc.retry.Do(ctx, func(int) error {
		return uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.Repos) error {
			s, err := uc.cancelInTx(ctx, repos, saleID, actingUserID)
			if err != nil {
				return err
			}
			sale = s
			return nil
		})
	})
	if err != nil {
		uc.log.Warn().Err(err).
			Str("sale_id", saleID).
			Str("user_id", actingUserID).
			Int("attempts", attempts).
			Msg("cancelación rechazada")
		return nil, err
	}
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("user_id", actingUserID).
		Int("items", len(sale.Items)).
		Int("attempts", attempts).
		Msg("venta cancelada")
	return sale, nil
}

func (uc *CancelSaleUseCase) cancelInTx(ctx context.Context, repos ports.Repos, saleID, actingUserID string) (*entity.Sale, error) {
	sale, err := repos.Sales.GetForUpdate(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("venta %s: %w", saleID, domain.ErrNotFound)
	}
	now := uc.clock.Now()
	if err := sale.Cancel(now, actingUserID); err != nil {
		return nil, err
	}

	// Mismo orden de bloqueo que CreateSale.
	items := make([]*entity.SaleItem, len(sale.Items))
	copy(items, sale.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	note := "Cancelación venta #" + sale.ID
	restored := make([]map[string]any, 0, len(items))
	for _, it := range items {
		p, err := uc.guard.Restock(ctx, repos.Stock, it.ProductID, it.Quantity)
		if err != nil {
			return nil, err
		}
		mov := &entity.InventoryMovement{
			ID:        uuid.New().String(),
			ProductID: it.ProductID,
			Type:      entity.MovementTypeEntrada,
			Quantity:  it.Quantity,
			Date:      now,
			Note:      note,
			SaleID:    sale.ID,
			CreatedBy: actingUserID,
		}
		if err := repos.Movements.Create(ctx, mov); err != nil {
			return nil, err
		}
		restored = append(restored, map[string]any{
			"product_id":  it.ProductID,
			"quantity":    it.Quantity,
			"stock_after": p.Stock,
		})
	}

	if err := repos.Sales.MarkCancelled(ctx, sale.ID, now, actingUserID); err != nil {
		return nil, err
	}
	if _, err := uc.audit.Record(ctx, repos.Logs, audit.Entry{
		ActorID:    actingUserID,
		Action:     entity.ActionCancel,
		EntityType: entity.EntitySale,
		EntityID:   sale.ID,
		Details: map[string]any{
			"total":    sale.TotalPrice.StringFixed(2),
			"seller":   sale.UserID,
			"restored": restored,
		},
	}); err != nil {
		return nil, err
	}
	return sale, nil
}
