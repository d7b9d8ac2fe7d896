package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/audit"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/dto"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

const minPasswordLen = 8

// UserUseCase alta y baja de usuarios. La baja arrastra todo lo que el usuario posee.
type UserUseCase struct {
	txRunner ports.TxRunner
	repos    ports.Repos
	audit    *audit.Recorder
	clock    ports.Clock
	log      zerolog.Logger
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(txRunner ports.TxRunner, repos ports.Repos, recorder *audit.Recorder, clock ports.Clock, log zerolog.Logger) *UserUseCase {
	return &UserUseCase{txRunner: txRunner, repos: repos, audit: recorder, clock: clock, log: log}
}

// Create valida, hashea la contraseña con bcrypt y persiste. actorID puede ser vacío
// solo para el primer usuario del sistema (sin auditoría).
func (uc *UserUseCase) Create(ctx context.Context, actorID string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" {
		return nil, domain.Invalid("username", "el usuario es obligatorio")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, domain.Invalid("email", "email inválido")
	}
	if len(in.Password) < minPasswordLen {
		return nil, domain.Invalid("password", fmt.Sprintf("la contraseña debe tener al menos %d caracteres", minPasswordLen))
	}
	if in.Role == "" {
		in.Role = entity.RoleEmpleado
	}
	if !entity.ValidRole(in.Role) {
		return nil, domain.Invalid("role", "rol debe ser admin o empleado")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		ManagerID:    in.ManagerID,
		IsActive:     true,
		CreatedAt:    uc.clock.Now(),
	}
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.Repos) error {
		if existing, err := repos.Users.GetByUsername(ctx, user.Username); err != nil {
			return err
		} else if existing != nil {
			return fmt.Errorf("username %s: %w", user.Username, domain.ErrDuplicate)
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		if actorID == "" {
			return nil
		}
		_, err := uc.audit.Record(ctx, repos.Logs, audit.Entry{
			ActorID:    actorID,
			Action:     entity.ActionCreate,
			EntityType: entity.EntityUser,
			EntityID:   user.ID,
			Details:    map[string]any{"username": user.Username, "role": user.Role},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("usuario creado")
	return dto.ToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID; nil si no existe.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return dto.ToUserResponse(user), nil
}

// Delete elimina al usuario y, en la misma transacción, sus ventas con sus líneas, los
// movimientos y productos que posee, sus entradas de auditoría y sus reportes. Las
// referencias de otros registros (cancelado por, jefe) quedan vacías. Si ventas de otros
// usuarios incluyen productos suyos se rechaza con domain.ErrConflict: borrarlos
// reescribiría la historia ajena.
func (uc *UserUseCase) Delete(ctx context.Context, actorID, userID string) error {
	if userID == "" {
		return domain.Invalid("user_id", "el usuario es obligatorio")
	}
	if actorID == userID {
		return domain.Invalid("user_id", "un usuario no puede eliminarse a sí mismo")
	}
	var removedProducts int
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.Repos) error {
		user, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		shared, err := repos.Sales.ProductsSoldToOthers(ctx, userID)
		if err != nil {
			return err
		}
		if shared {
			return fmt.Errorf("productos del usuario %s figuran en ventas de otros usuarios: %w", userID, domain.ErrConflict)
		}
		productIDs, err := repos.Products.ListIDsByUser(ctx, userID)
		if err != nil {
			return err
		}
		removedProducts = len(productIDs)

		steps := []func() error{
			func() error { return repos.Sales.DeleteByUser(ctx, userID) },
			func() error { return repos.Movements.DeleteByProducts(ctx, productIDs) },
			func() error { return repos.Products.DeleteByUser(ctx, userID) },
			func() error { return repos.Logs.DeleteByUser(ctx, userID) },
			func() error { return repos.Reports.DeleteByUser(ctx, userID) },
			func() error { return repos.Sales.ClearCancelledBy(ctx, userID) },
			func() error { return repos.Users.ClearManager(ctx, userID) },
			func() error { return repos.Users.Delete(ctx, userID) },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		_, err = uc.audit.Record(ctx, repos.Logs, audit.Entry{
			ActorID:    actorID,
			Action:     entity.ActionDelete,
			EntityType: entity.EntityUser,
			EntityID:   userID,
			Details:    map[string]any{"username": user.Username, "products": len(productIDs)},
		})
		return err
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("no se pudo eliminar el usuario")
		return err
	}
	uc.log.Info().Str("user_id", userID).Int("products", removedProducts).Msg("usuario eliminado")
	return nil
}
