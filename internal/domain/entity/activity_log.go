package entity

import (
	"encoding/json"
	"time"
)

// Acciones registradas en el log de actividad.
const (
	ActionCreate      = "create"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionSale        = "sale"
	ActionCancel      = "cancel"
	ActionAdjustStock = "adjust_stock"
)

// Tipos de entidad auditados.
const (
	EntitySale     = "sale"
	EntityProduct  = "product"
	EntityMovement = "inventory_movement"
	EntityUser     = "user"
	EntityReport   = "report"
)

// ActivityLog entrada inmutable del log de auditoría.
type ActivityLog struct {
	ID         string
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Details    json.RawMessage
	CreatedAt  time.Time
}
