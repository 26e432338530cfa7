package repository

import (
	"context"

	"github.com/buildmaster/backoffice-api/internal/domain/entity"
)

// ActivityLogRepository puerto append-only del registro de actividad: no hay Update ni Delete.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *entity.ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]*entity.ActivityLog, error)
	GetByID(ctx context.Context, id int64) (*entity.ActivityLog, error)
}
