package dto

import (
	"encoding/json"
	"time"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// GenerateReportRequest body para POST /api/reports/{sales,general}.
// Acepta YYYY-MM-DD o RFC 3339.
type GenerateReportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ReportResponse snapshot persistido.
type ReportResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        string          `json:"type"`
	GeneratedAt time.Time       `json:"generated_at"`
	Data        json.RawMessage `json:"data"`
}

// ReportListResponse listado paginado.
type ReportListResponse struct {
	Items []ReportResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// ToReportResponse mapea la entidad.
func ToReportResponse(r *entity.Report) *ReportResponse {
	return &ReportResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		Type:        r.Type,
		GeneratedAt: r.GeneratedAt,
		Data:        r.Data,
	}
}

// ActivityLogResponse entrada del log de auditoría.
type ActivityLogResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ActivityLogListResponse listado paginado.
type ActivityLogListResponse struct {
	Items []ActivityLogResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ToActivityLogResponse mapea la entidad.
func ToActivityLogResponse(l *entity.ActivityLog) *ActivityLogResponse {
	return &ActivityLogResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		Action:     l.Action,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Details:    l.Details,
		CreatedAt:  l.CreatedAt,
	}
}
