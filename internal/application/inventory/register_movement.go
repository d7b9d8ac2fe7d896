package inventory

import (
	"context"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/dto"
)

// RecordMovementFromRequest adapta el request HTTP al caso de uso RecordManualMovement.
// Usar desde handlers HTTP o desde otros casos de uso que tengan userID y dto.RegisterMovementRequest.
func (uc *RegisterMovementUseCase) RecordMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	mov, err := uc.RecordManualMovement(ctx, MovementInput{
		UserID:    userID,
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Note:      in.Note,
	})
	if err != nil {
		return nil, err
	}
	return dto.ToMovementResponse(mov), nil
}

// AdjustStockFromRequest adapta el request de ajuste con signo.
func (uc *RegisterMovementUseCase) AdjustStockFromRequest(ctx context.Context, userID, productID string, in dto.AdjustStockRequest) (*dto.MovementResponse, error) {
	mov, err := uc.AdjustStock(ctx, userID, productID, in.Adjustment, in.Reason)
	if err != nil {
		return nil, err
	}
	return dto.ToMovementResponse(mov), nil
}

