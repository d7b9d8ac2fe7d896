package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/audit"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/dto"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

// Intentos ante códigos generados en paralelo con el mismo prefijo.
const codeAttempts = 3

// ProductUseCase casos de uso CRUD para productos. El stock solo cambia vía movimientos.
type ProductUseCase struct {
	txRunner ports.TxRunner
	repos    ports.Repos
	audit    *audit.Recorder
	clock    ports.Clock
	log      zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner ports.TxRunner, repos ports.Repos, recorder *audit.Recorder, clock ports.Clock, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repos: repos, audit: recorder, clock: clock, log: log}
}

func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return domain.Invalid("price", "el precio no puede ser negativo")
	}
	if !p.Equal(p.Round(2)) {
		return domain.Invalid("price", "el precio admite máximo dos decimales")
	}
	return nil
}

// Create crea el producto con código generado. Un stock inicial queda registrado como entrada.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if userID == "" {
		return nil, domain.Invalid("user_id", "el usuario es obligatorio")
	}
	if in.Name == "" {
		return nil, domain.Invalid("name", "el nombre es obligatorio")
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	if in.Stock < 0 {
		return nil, domain.Invalid("stock", "el stock inicial no puede ser negativo")
	}

	var product *entity.Product
	var err error
	for attempt := 1; attempt <= codeAttempts; attempt++ {
		product, err = uc.createInTx(ctx, userID, in)
		if err == nil || !errors.Is(err, domain.ErrDuplicate) {
			break
		}
		uc.log.Debug().Int("attempt", attempt).Msg("código de producto repetido, reintentando")
	}
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", product.ID).Str("code", product.Code).Msg("producto creado")
	return dto.ToProductResponse(product), nil
}

func (uc *ProductUseCase) createInTx(ctx context.Context, userID string, in dto.CreateProductRequest) (*entity.Product, error) {
	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.Repos) error {
		owner, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if owner == nil {
			return domain.Invalid("user_id", fmt.Sprintf("el usuario %s no existe", userID))
		}
		prefix := CodePrefix(in.Category, in.Name)
		last, err := repos.Products.LastCodeWithPrefix(ctx, prefix)
		if err != nil {
			return err
		}
		code := NextCode(prefix, last)
		for {
			taken, err := repos.Products.GetByCode(ctx, code)
			if err != nil {
				return err
			}
			if taken == nil {
				break
			}
			code = NextCode(prefix, code)
		}

		now := uc.clock.Now()
		category := in.Category
		if category == "" {
			category = defaultCategoryCode
		}
		product = &entity.Product{
			ID:        uuid.New().String(),
			UserID:    userID,
			Name:      in.Name,
			Category:  category,
			Price:     in.Price,
			Stock:     in.Stock,
			Code:      code,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if in.Stock > 0 {
			if err := repos.Movements.Create(ctx, &entity.InventoryMovement{
				ID:        uuid.New().String(),
				ProductID: product.ID,
				Type:      entity.MovementTypeEntrada,
				Quantity:  in.Stock,
				Date:      now,
				Note:      "Stock inicial",
				CreatedBy: userID,
			}); err != nil {
				return err
			}
		}
		_, err = uc.audit.Record(ctx, repos.Logs, audit.Entry{
			ActorID:    userID,
			Action:     entity.ActionCreate,
			EntityType: entity.EntityProduct,
			EntityID:   product.ID,
			Details:    map[string]any{"code": product.Code, "name": product.Name, "stock": product.Stock},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID obtiene un producto por ID; nil si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return dto.ToProductResponse(p), nil
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, f repository.ProductFilter) (*dto.ProductListResponse, error) {
	list, err := uc.repos.Products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{
		Items: make([]dto.ProductResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}
	for _, p := range list {
		out.Items = append(out.Items, *dto.ToProductResponse(p))
	}
	return out, nil
}

// Update modifica nombre, categoría o precio. El código y el stock no cambian.
func (uc *ProductUseCase) Update(ctx context.Context, actorID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return nil, err
		}
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Invalid("name", "el nombre es obligatorio")
	}
	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.Repos) error {
		p, err := repos.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		changes := map[string]any{}
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
			changes["name"] = p.Name
		}
		if in.Category != nil {
			p.Category = strings.TrimSpace(*in.Category)
			changes["category"] = p.Category
		}
		if in.Price != nil {
			changes["price_before"] = p.Price.StringFixed(2)
			p.Price = *in.Price
			changes["price"] = p.Price.StringFixed(2)
		}
		p.UpdatedAt = uc.clock.Now()
		if err := repos.Products.Update(ctx, p); err != nil {
			return err
		}
		product = p
		_, err = uc.audit.Record(ctx, repos.Logs, audit.Entry{
			ActorID:    actorID,
			Action:     entity.ActionUpdate,
			EntityType: entity.EntityProduct,
			EntityID:   p.ID,
			Details:    changes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product), nil
}

// Delete elimina un producto sin historial. Con ventas o movimientos se rechaza con ErrConflict.
func (uc *ProductUseCase) Delete(ctx context.Context, actorID, id string) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.Repos) error {
		p, err := repos.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		has, err := repos.Products.HasHistory(ctx, id)
		if err != nil {
			return err
		}
		if has {
			return fmt.Errorf("producto %s tiene ventas o movimientos: %w", id, domain.ErrConflict)
		}
		if err := repos.Products.Delete(ctx, id); err != nil {
			return err
		}
		_, err = uc.audit.Record(ctx, repos.Logs, audit.Entry{
			ActorID:    actorID,
			Action:     entity.ActionDelete,
			EntityType: entity.EntityProduct,
			EntityID:   id,
			Details:    map[string]any{"code": p.Code, "name": p.Name},
		})
		return err
	})
}
