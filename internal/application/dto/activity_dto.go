package dto

import (
	"encoding/json"
	"time"
)

// ActivityLogResponse entrada del registro de actividad.
type ActivityLogResponse struct {
	ID        int64           `json:"id"`
	Action    string          `json:"action"`
	Details   string          `json:"details"`
	User      string          `json:"user"`
	Timestamp time.Time       `json:"timestamp"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// ActivityLogDetailResponse entrada con su metadata tipada según la acción.
type ActivityLogDetailResponse struct {
	ActivityLogResponse
	MetadataType string `json:"metadata_type,omitempty"` // sale | void | entity
	Payload      any    `json:"payload,omitempty"`
}
