package repository

import (
	"context"

	"github.com/buildmaster/backoffice-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	Count(ctx context.Context) (int, error)
	// AdjustStock aplica delta en una sola sentencia condicional y devuelve el stock resultante.
	// domain.ErrNotFound si el producto no existe; domain.ErrInsufficientStock si quedaría negativo.
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
}
