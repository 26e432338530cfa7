package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de acción del registro de actividad (texto libre mostrado en el panel).
const (
	ActionSale       = "Sale"
	ActionVoid       = "Void Transaction"
	ActionAddUser    = "Add User"
	ActionDeleteUser = "Delete User"
	ActionLogin      = "Login"
	ActionLogout     = "Logout"
)

// ActivityLog entrada del registro de auditoría. Solo se inserta; nunca se modifica ni se borra.
// Metadata guarda la forma cruda (JSON) del payload tipado para las vistas de detalle.
type ActivityLog struct {
	ID        int64
	Action    string
	Details   string // resumen legible
	User      string // username del actor
	Timestamp time.Time
	Metadata  json.RawMessage
}

// LogMetadata payload estructurado de una entrada; una variante por tipo de acción.
type LogMetadata interface {
	ActionKind() string
}

// SaleMetadata payload de una venta.
type SaleMetadata struct {
	Items  []SaleItem      `json:"items"`
	Total  decimal.Decimal `json:"total"`
	SaleID int64           `json:"id"`
}

// ActionKind implementa LogMetadata.
func (SaleMetadata) ActionKind() string { return ActionSale }

// VoidMetadata payload de una anulación; ApprovedBy es el supervisor que la autorizó.
type VoidMetadata struct {
	Items      []SaleItem      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	SaleID     int64           `json:"id"`
	ApprovedBy string          `json:"approvedBy"`
}

// ActionKind implementa LogMetadata.
func (VoidMetadata) ActionKind() string { return ActionVoid }

// EntityMetadata payload genérico de altas/bajas de entidades (usuarios, etc.).
type EntityMetadata struct {
	Kind   string
	Fields map[string]any
}

// ActionKind implementa LogMetadata.
func (m EntityMetadata) ActionKind() string { return m.Kind }

// MarshalJSON serializa solo los campos; el tipo ya vive en la columna action.
func (m EntityMetadata) MarshalJSON() ([]byte, error) {
	if m.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.Fields)
}

// DecodeMetadata reconstruye la variante tipada a partir del tipo de acción y el JSON guardado.
// Sin metadata devuelve (nil, nil).
func DecodeMetadata(action string, raw json.RawMessage) (LogMetadata, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch action {
	case ActionSale:
		var m SaleMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode sale metadata: %w", err)
		}
		return m, nil
	case ActionVoid:
		var m VoidMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode void metadata: %w", err)
		}
		return m, nil
	default:
		fields := map[string]any{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("decode entity metadata: %w", err)
		}
		return EntityMetadata{Kind: action, Fields: fields}, nil
	}
}
