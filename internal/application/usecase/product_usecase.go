package usecase

import (
	"context"

	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

// ProductUseCase lectura del inventario para el POS y el panel. El stock solo cambia vía ventas y anulaciones.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// List devuelve el inventario completo, más recientes primero.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToProductResponse(p))
	}
	return out, nil
}

// GetByID obtiene un producto; domain.ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	out := ToProductResponse(p)
	return &out, nil
}

// ToProductResponse mapea la entidad a la salida pública.
func ToProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Stock:     p.Stock,
		Unit:      p.Unit,
		UpdatedAt: p.UpdatedAt,
	}
}
