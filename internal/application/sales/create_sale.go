package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/audit"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/inventory"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// LineRequest línea solicitada de una venta.
type LineRequest struct {
	ProductID string
	Quantity  int
}

// CreateSaleUseCase registra ventas: cabecera, líneas, salidas de inventario y auditoría
// en una sola transacción. O se aplica todo o nada.
type CreateSaleUseCase struct {
	txRunner ports.TxRunner
	guard    *inventory.StockGuard
	audit    *audit.Recorder
	clock    ports.Clock
	retry    inventory.RetryPolicy
	log      zerolog.Logger
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	txRunner ports.TxRunner,
	guard *inventory.StockGuard,
	recorder *audit.Recorder,
	clock ports.Clock,
	retry inventory.RetryPolicy,
	log zerolog.Logger,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner: txRunner,
		guard:    guard,
		audit:    recorder,
		clock:    clock,
		retry:    retry,
		log:      log,
	}
}

func validateLines(userID string, lines []LineRequest) error {
	if userID == "" {
		return domain.Invalid("user_id", "el usuario es obligatorio")
	}
	if len(lines) == 0 {
		return domain.Invalid("items", "la venta debe tener al menos un item")
	}
	for i, l := range lines {
		if l.ProductID == "" {
			return domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "el producto es obligatorio")
		}
		if l.Quantity <= 0 {
			return domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "la cantidad debe ser mayor a 0")
		}
	}
	return nil
}

// CreateSale valida la solicitud fuera de la transacción y luego, dentro de ella,
// reserva el stock de todos los productos, persiste la venta y sus movimientos y
// registra la auditoría. Contención y fallas transitorias reintentan el intento completo.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, userID string, lines []LineRequest) (*entity.Sale, error) {
	if err := validateLines(userID, lines); err != nil {
		return nil, err
	}

	var sale *entity.Sale
	attempts, err := uc.retry.Do(ctx, func(int) error {
		return uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.Repos) error {
			s, err := uc.createInTx(ctx, repos, userID, lines)
			if err != nil {
				return err
			}
			sale = s
			return nil
		})
	})
	if err != nil {
		ev := uc.log.Error()
		if domain.IsClientError(err) {
			ev = uc.log.Warn()
		}
		ev.Err(err).
			Str("user_id", userID).
			Int("lines", len(lines)).
			Int("attempts", attempts).
			Msg("venta rechazada")
		return nil, err
	}
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("user_id", userID).
		Str("total", sale.TotalPrice.StringFixed(2)).
		Int("attempts", attempts).
		Msg("venta registrada")
	return sale, nil
}

func (uc *CreateSaleUseCase) createInTx(ctx context.Context, repos ports.Repos, userID string, lines []LineRequest) (_ *entity.Sale, err error) {
	user, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.Invalid("user_id", fmt.Sprintf("el usuario %s no existe", userID))
	}

	reqs := make([]inventory.StockRequest, 0, len(lines))
	for _, l := range lines {
		reqs = append(reqs, inventory.StockRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	set, err := uc.guard.ReserveAll(ctx, repos.Stock, reqs)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		// Tras un error del almacén la tx ya no admite sentencias; el rollback devuelve el stock.
		if committed || !inventory.Releasable(err) {
			return
		}
		if relErr := uc.guard.ReleaseAll(ctx, repos.Stock, set); relErr != nil {
			uc.log.Warn().Err(relErr).Msg("no se pudieron liberar reservas de la venta")
		}
	}()

	now := uc.clock.Now()
	sale := &entity.Sale{
		ID:     uuid.New().String(),
		UserID: userID,
		Date:   now,
		State:  entity.ActiveSale{},
	}
	for _, l := range lines {
		res := set.For(l.ProductID)
		sale.Items = append(sale.Items, entity.NewSaleItem(uuid.New().String(), sale.ID, l.ProductID, l.Quantity, res.UnitPrice))
	}
	sale.TotalPrice = sale.ComputeTotal()
	if err := sale.CheckInvariants(); err != nil {
		return nil, err
	}

	if err := repos.Sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	note := "Venta #" + sale.ID
	for _, it := range sale.Items {
		if err := repos.Sales.CreateItem(ctx, it); err != nil {
			return nil, err
		}
		mov := &entity.InventoryMovement{
			ID:        uuid.New().String(),
			ProductID: it.ProductID,
			Type:      entity.MovementTypeSalida,
			Quantity:  it.Quantity,
			Date:      now,
			Note:      note,
			SaleID:    sale.ID,
			CreatedBy: userID,
		}
		if err := repos.Movements.Create(ctx, mov); err != nil {
			return nil, err
		}
	}

	products := make([]map[string]any, 0, len(set.All()))
	for _, res := range set.All() {
		products = append(products, map[string]any{
			"product_id":   res.ProductID,
			"name":         res.ProductName,
			"quantity":     res.Quantity,
			"stock_before": res.Before,
			"stock_after":  res.Before - res.Quantity,
		})
	}
	if _, err := uc.audit.Record(ctx, repos.Logs, audit.Entry{
		ActorID:    userID,
		Action:     entity.ActionSale,
		EntityType: entity.EntitySale,
		EntityID:   sale.ID,
		Details: map[string]any{
			"total":    sale.TotalPrice.StringFixed(2),
			"items":    len(sale.Items),
			"products": products,
		},
	}); err != nil {
		return nil, err
	}

	if err := uc.guard.CommitAll(set); err != nil {
		return nil, err
	}
	committed = true
	return sale, nil
}
