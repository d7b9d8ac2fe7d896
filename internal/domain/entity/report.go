package entity

import (
	"encoding/json"
	"time"
)

// Tipos de reporte (enumeración cerrada).
const (
	ReportTypeSales     = "sales"
	ReportTypeInventory = "inventory"
	ReportTypeProducts  = "products"
	ReportTypeGeneral   = "general"
)

// Report snapshot derivado del ledger. No se recalcula después de generado.
type Report struct {
	ID          string
	UserID      string
	Type        string
	GeneratedAt time.Time
	Data        json.RawMessage
}

// ValidReportType indica si t pertenece a la enumeración de reportes.
func ValidReportType(t string) bool {
	switch t {
	case ReportTypeSales, ReportTypeInventory, ReportTypeProducts, ReportTypeGeneral:
		return true
	}
	return false
}
