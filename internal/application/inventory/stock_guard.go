package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

type reservationState int

const (
	reservationHeld reservationState = iota
	reservationReleased
	reservationCommitted
)

// Reservation retención provisional de stock dentro de una transacción en curso.
// El stock ya fue descontado; Release lo devuelve exacto y Commit lo hace definitivo.
type Reservation struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal // precio leído bajo el bloqueo, usado como snapshot de la línea
	Before      int             // stock antes de reservar
	state       reservationState
}

// Held indica si la reserva sigue pendiente.
func (r *Reservation) Held() bool { return r.state == reservationHeld }

// StockRequest cantidad solicitada de un producto.
type StockRequest struct {
	ProductID string
	Quantity  int
}

// StockGuard serializa las mutaciones de stock por producto. La exclusión la da el bloqueo
// de fila del StockRepository (SELECT FOR UPDATE o su equivalente en memoria), que se
// mantiene hasta el fin de la transacción del caller.
type StockGuard struct {
	log zerolog.Logger
}

// NewStockGuard construye el guard.
func NewStockGuard(log zerolog.Logger) *StockGuard {
	return &StockGuard{log: log}
}

func validateRequest(productID string, quantity int) error {
	if productID == "" {
		return domain.Invalid("product_id", "el producto es obligatorio")
	}
	if quantity <= 0 {
		return domain.Invalid("quantity", "la cantidad debe ser mayor a 0")
	}
	return nil
}

// Reserve bloquea el producto, verifica stock >= quantity y lo descuenta.
func (g *StockGuard) Reserve(ctx context.Context, stock repository.StockRepository, productID string, quantity int) (*Reservation, error) {
	if err := validateRequest(productID, quantity); err != nil {
		return nil, err
	}
	p, err := stock.LockForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.Invalid("product_id", fmt.Sprintf("el producto %s no existe", productID))
	}
	if p.Stock < quantity {
		return nil, &domain.InsufficientStockError{
			ProductID: productID,
			Available: p.Stock,
			Requested: quantity,
			Shortfall: quantity - p.Stock,
		}
	}
	if err := stock.SetStock(ctx, productID, p.Stock-quantity); err != nil {
		return nil, err
	}
	return &Reservation{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		UnitPrice:   p.Price,
		Before:      p.Stock,
	}, nil
}

// Release devuelve al stock exactamente lo reservado.
func (g *StockGuard) Release(ctx context.Context, stock repository.StockRepository, r *Reservation) error {
	switch r.state {
	case reservationCommitted:
		return fmt.Errorf("reserva de %s ya confirmada: %w", r.ProductID, domain.ErrConflict)
	case reservationReleased:
		return fmt.Errorf("reserva de %s ya liberada: %w", r.ProductID, domain.ErrConflict)
	}
	// La misma tx ya tiene el bloqueo; volver a pedirlo es reentrante.
	p, err := stock.LockForUpdate(ctx, r.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("liberar reserva de %s: %w", r.ProductID, domain.ErrNotFound)
	}
	if err := stock.SetStock(ctx, r.ProductID, p.Stock+r.Quantity); err != nil {
		return err
	}
	r.state = reservationReleased
	return nil
}

// Commit vuelve definitiva la reserva; después no puede liberarse.
func (g *StockGuard) Commit(r *Reservation) error {
	if r.state != reservationHeld {
		return fmt.Errorf("reserva de %s no está pendiente: %w", r.ProductID, domain.ErrConflict)
	}
	r.state = reservationCommitted
	return nil
}

// Restock incrementa el stock bajo el mismo bloqueo (entradas y cancelaciones).
func (g *StockGuard) Restock(ctx context.Context, stock repository.StockRepository, productID string, quantity int) (*entity.Product, error) {
	if err := validateRequest(productID, quantity); err != nil {
		return nil, err
	}
	p, err := stock.LockForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.Invalid("product_id", fmt.Sprintf("el producto %s no existe", productID))
	}
	p.Stock += quantity
	if err := stock.SetStock(ctx, productID, p.Stock); err != nil {
		return nil, err
	}
	return p, nil
}

// ReservationSet reservas de un mismo intento, una por producto.
type ReservationSet struct {
	byProduct map[string]*Reservation
	order     []*Reservation
}

// For devuelve la reserva del producto, o nil.
func (s *ReservationSet) For(productID string) *Reservation {
	return s.byProduct[productID]
}

// All reservas en orden de adquisición (id de producto ascendente).
func (s *ReservationSet) All() []*Reservation {
	return s.order
}

// Releasable indica si tras err la transacción sigue admitiendo sentencias, es decir,
// si fue un rechazo del guard que no pasó por el almacén. Un error del almacén deja
// la tx de PostgreSQL abortada (25P02); ahí solo el rollback devuelve el stock.
func Releasable(err error) bool {
	var short *domain.InsufficientStockError
	if errors.As(err, &short) {
		return true
	}
	var ve *domain.ValidationError
	return errors.As(err, &ve) && ve.Field == "product_id"
}

// ReserveAll agrega las cantidades por producto y reserva en orden ascendente de id,
// orden fijo que evita deadlocks entre ventas que comparten productos. Si una reserva
// es rechazada se liberan las anteriores y nada queda retenido; si falla el almacén
// la transacción se descarta entera.
func (g *StockGuard) ReserveAll(ctx context.Context, stock repository.StockRepository, reqs []StockRequest) (*ReservationSet, error) {
	if len(reqs) == 0 {
		return nil, domain.Invalid("items", "se requiere al menos un producto")
	}
	totals := make(map[string]int, len(reqs))
	for _, req := range reqs {
		if err := validateRequest(req.ProductID, req.Quantity); err != nil {
			return nil, err
		}
		totals[req.ProductID] += req.Quantity
	}
	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	set := &ReservationSet{byProduct: make(map[string]*Reservation, len(ids))}
	for _, id := range ids {
		res, err := g.Reserve(ctx, stock, id, totals[id])
		if err != nil {
			if !Releasable(err) {
				return nil, err
			}
			if relErr := g.ReleaseAll(ctx, stock, set); relErr != nil {
				g.log.Warn().Err(relErr).Str("product_id", id).Msg("no se pudieron liberar reservas previas")
			}
			return nil, err
		}
		set.byProduct[id] = res
		set.order = append(set.order, res)
	}
	return set, nil
}

// ReleaseAll libera en orden inverso las reservas aún pendientes.
func (g *StockGuard) ReleaseAll(ctx context.Context, stock repository.StockRepository, set *ReservationSet) error {
	if set == nil {
		return nil
	}
	var errs []error
	for i := len(set.order) - 1; i >= 0; i-- {
		res := set.order[i]
		if !res.Held() {
			continue
		}
		if err := g.Release(ctx, stock, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CommitAll confirma todas las reservas del intento.
func (g *StockGuard) CommitAll(set *ReservationSet) error {
	for _, res := range set.order {
		if err := g.Commit(res); err != nil {
			return err
		}
	}
	return nil
}
