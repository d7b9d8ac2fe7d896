package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

// Entry acción a documentar en el log de actividad.
type Entry struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Details    any // se serializa a JSON; nil queda como null
}

// Recorder escribe entradas de auditoría con el repositorio de la transacción del caller,
// de modo que una mutación revertida no deja entrada y una confirmada siempre la deja.
type Recorder struct {
	clock ports.Clock
	log   zerolog.Logger
}

// NewRecorder construye el recorder.
func NewRecorder(clock ports.Clock, log zerolog.Logger) *Recorder {
	return &Recorder{clock: clock, log: log}
}

// Record persiste la entrada. Si falla, el caller debe abortar la transacción:
// una mutación sin auditoría no se confirma.
func (r *Recorder) Record(ctx context.Context, logs repository.ActivityLogRepository, e Entry) (*entity.ActivityLog, error) {
	if e.ActorID == "" || e.Action == "" || e.EntityType == "" {
		return nil, domain.Invalid("audit", "actor, acción y tipo de entidad son obligatorios")
	}
	details, err := json.Marshal(e.Details)
	if err != nil {
		return nil, fmt.Errorf("serializar detalles de auditoría: %w", err)
	}
	entry := &entity.ActivityLog{
		ID:         uuid.New().String(),
		UserID:     e.ActorID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    details,
		CreatedAt:  r.clock.Now(),
	}
	if err := logs.Create(ctx, entry); err != nil {
		r.log.Error().Err(err).
			Str("action", e.Action).
			Str("entity_type", e.EntityType).
			Str("entity_id", e.EntityID).
			Msg("no se pudo registrar auditoría")
		return nil, fmt.Errorf("registrar auditoría %s: %w", e.Action, err)
	}
	r.log.Debug().
		Str("actor_id", e.ActorID).
		Str("action", e.Action).
		Str("entity_type", e.EntityType).
		Str("entity_id", e.EntityID).
		Msg("auditoría registrada")
	return entry, nil
}
