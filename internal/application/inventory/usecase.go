package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/audit"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// RegisterMovementUseCase registra movimientos manuales de inventario (entrada/salida)
// de forma transaccional: bloqueo de fila vía StockGuard, movimiento, auditoría y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner ports.TxRunner
	guard    *StockGuard
	audit    *audit.Recorder
	clock    ports.Clock
	retry    RetryPolicy
	log      zerolog.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner ports.TxRunner,
	guard *StockGuard,
	recorder *audit.Recorder,
	clock ports.Clock,
	retry RetryPolicy,
	log zerolog.Logger,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner: txRunner,
		guard:    guard,
		audit:    recorder,
		clock:    clock,
		retry:    retry,
		log:      log,
	}
}

// MovementInput entrada para registrar un movimiento manual.
type MovementInput struct {
	UserID    string
	ProductID string
	Type      string // entrada, salida
	Quantity  int
	Note      string
}

// RecordManualMovement ajusta el stock fuera de una venta. Una salida mayor al stock
// disponible termina en *domain.InsufficientStockError sin efectos.
func (uc *RegisterMovementUseCase) RecordManualMovement(ctx context.Context, in MovementInput) (*entity.InventoryMovement, error) {
	if in.UserID == "" {
		return nil, domain.Invalid("user_id", "el usuario es obligatorio")
	}
	if !entity.ValidMovementType(in.Type) {
		return nil, domain.Invalid("type", "tipo de movimiento debe ser entrada o salida")
	}
	if err := validateRequest(in.ProductID, in.Quantity); err != nil {
		return nil, err
	}

	var mov *entity.InventoryMovement
	attempts, err := uc.retry.Do(ctx, func(int) error {
		return uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.Repos) error {
			m, err := uc.applyInTx(ctx, repos, in)
			if err != nil {
				return err
			}
			mov = m
			return nil
		})
	})
	if err != nil {
		uc.log.Warn().Err(err).
			Str("product_id", in.ProductID).
			Str("type", in.Type).
			Int("quantity", in.Quantity).
			Int("attempts", attempts).
			Msg("movimiento de inventario rechazado")
		return nil, err
	}
	uc.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("type", mov.Type).
		Int("quantity", mov.Quantity).
		Msg("movimiento de inventario registrado")
	return mov, nil
}

// AdjustStock ajuste con signo: positivo es entrada, negativo salida. reason es obligatorio.
func (uc *RegisterMovementUseCase) AdjustStock(ctx context.Context, userID, productID string, adjustment int, reason string) (*entity.InventoryMovement, error) {
	if adjustment == 0 {
		return nil, domain.Invalid("adjustment", "el ajuste no puede ser 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.Invalid("reason", "el motivo del ajuste es obligatorio")
	}
	in := MovementInput{
		UserID:    userID,
		ProductID: productID,
		Type:      entity.MovementTypeEntrada,
		Quantity:  adjustment,
		Note:      "Ajuste: " + reason,
	}
	if adjustment < 0 {
		in.Type = entity.MovementTypeSalida
		in.Quantity = -adjustment
	}
	return uc.RecordManualMovement(ctx, in)
}

func (uc *RegisterMovementUseCase) applyInTx(ctx context.Context, repos ports.Repos, in MovementInput) (*entity.InventoryMovement, error) {
	if in.Type == entity.MovementTypeEntrada {
		p, err := uc.guard.Restock(ctx, repos.Stock, in.ProductID, in.Quantity)
		if err != nil {
			return nil, err
		}
		return uc.writeMovement(ctx, repos, in, p.Stock-in.Quantity, p.Stock)
	}

	res, err := uc.guard.Reserve(ctx, repos.Stock, in.ProductID, in.Quantity)
	if err != nil {
		return nil, err
	}
	mov, err := uc.writeMovement(ctx, repos, in, res.Before, res.Before-in.Quantity)
	if err != nil {
		if Releasable(err) {
			if relErr := uc.guard.Release(ctx, repos.Stock, res); relErr != nil {
				uc.log.Warn().Err(relErr).Str("product_id", in.ProductID).Msg("no se pudo liberar la reserva del movimiento")
			}
		}
		return nil, err
	}
	if err := uc.guard.Commit(res); err != nil {
		return nil, err
	}
	return mov, nil
}

// writeMovement guarda el movimiento y su entrada de auditoría en la misma tx.
func (uc *RegisterMovementUseCase) writeMovement(ctx context.Context, repos ports.Repos, in MovementInput, before, after int) (*entity.InventoryMovement, error) {
	mov := &entity.InventoryMovement{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Date:      uc.clock.Now(),
		Note:      in.Note,
		CreatedBy: in.UserID,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	_, err := uc.audit.Record(ctx, repos.Logs, audit.Entry{
		ActorID:    in.UserID,
		Action:     entity.ActionAdjustStock,
		EntityType: entity.EntityProduct,
		EntityID:   in.ProductID,
		Details: map[string]any{
			"movement_id":  mov.ID,
			"type":         mov.Type,
			"quantity":     mov.Quantity,
			"stock_before": before,
			"stock_after":  after,
			"note":         mov.Note,
		},
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}
