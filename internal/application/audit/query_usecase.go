package audit

import (
	"context"
	"fmt"

	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

// RecentLimit cantidad de entradas que devuelve el listado.
const RecentLimit = 100

// QueryUseCase lectura del registro de actividad.
type QueryUseCase struct {
	repo repository.ActivityLogRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(repo repository.ActivityLogRepository) *QueryUseCase {
	return &QueryUseCase{repo: repo}
}

// ListRecent devuelve las últimas RecentLimit entradas, más nuevas primero.
func (uc *QueryUseCase) ListRecent(ctx context.Context) ([]dto.ActivityLogResponse, error) {
	list, err := uc.repo.ListRecent(ctx, RecentLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityLogResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toResponse(e))
	}
	return out, nil
}

// Get devuelve una entrada con su metadata decodificada según el tipo de acción.
func (uc *QueryUseCase) Get(ctx context.Context, id int64) (*dto.ActivityLogDetailResponse, error) {
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	meta, err := entity.DecodeMetadata(e.Action, e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("log %d: %w", id, err)
	}
	out := &dto.ActivityLogDetailResponse{ActivityLogResponse: toResponse(e)}
	switch m := meta.(type) {
	case entity.SaleMetadata:
		out.MetadataType, out.Payload = "sale", m
	case entity.VoidMetadata:
		out.MetadataType, out.Payload = "void", m
	case entity.EntityMetadata:
		out.MetadataType, out.Payload = "entity", m.Fields
	}
	return out, nil
}

func toResponse(e *entity.ActivityLog) dto.ActivityLogResponse {
	return dto.ActivityLogResponse{
		ID:        e.ID,
		Action:    e.Action,
		Details:   e.Details,
		User:      e.User,
		Timestamp: e.Timestamp,
		Metadata:  e.Metadata,
	}
}
