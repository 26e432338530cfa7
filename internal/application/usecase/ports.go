package usecase

import (
	"context"

	"github.com/buildmaster/backoffice-api/internal/domain/entity"
)

// AuditRecorder sink del registro de actividad (ver audit.Logger).
type AuditRecorder interface {
	Record(ctx context.Context, action, summary, actor string, meta entity.LogMetadata)
}
