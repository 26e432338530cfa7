package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

var _ repository.ActivityLogRepository = (*ActivityLogRepo)(nil)

// ActivityLogRepo registro de actividad sobre PostgreSQL. Un trigger impide UPDATE y DELETE.
type ActivityLogRepo struct {
	q Querier
}

// NewActivityLogRepository construye el adaptador del registro de actividad.
func NewActivityLogRepository(q Querier) *ActivityLogRepo {
	return &ActivityLogRepo{q: q}
}

// Append inserta la entrada y asigna su ID.
func (r *ActivityLogRepo) Append(ctx context.Context, e *entity.ActivityLog) error {
	var meta []byte
	if len(e.Metadata) > 0 {
		meta = e.Metadata
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO activity_logs (action, details, username, timestamp, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, e.Action, e.Details, e.User, e.Timestamp, meta).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

// ListRecent últimas limit entradas, más nuevas primero.
func (r *ActivityLogRepo) ListRecent(ctx context.Context, limit int) ([]*entity.ActivityLog, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, action, details, username, timestamp, metadata
		FROM activity_logs ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.ActivityLog
	for rows.Next() {
		e, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// GetByID obtiene una entrada; (nil, nil) si no existe.
func (r *ActivityLogRepo) GetByID(ctx context.Context, id int64) (*entity.ActivityLog, error) {
	e, err := scanLog(r.q.QueryRow(ctx, `
		SELECT id, action, details, username, timestamp, metadata
		FROM activity_logs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get activity log: %w", err)
	}
	return e, nil
}

func scanLog(row pgx.Row) (*entity.ActivityLog, error) {
	var e entity.ActivityLog
	var meta []byte
	if err := row.Scan(&e.ID, &e.Action, &e.Details, &e.User, &e.Timestamp, &meta); err != nil {
		return nil, err
	}
	e.Metadata = meta
	return &e, nil
}
