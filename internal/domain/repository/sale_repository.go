package repository

import (
	"context"
	"time"

	"github.com/buildmaster/backoffice-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para Sale.
type SaleRepository interface {
	// Create inserta la venta y asigna ID y Date (hora del servidor).
	Create(ctx context.Context, sale *entity.Sale) error
	// GetActiveByID devuelve la venta si existe y no está anulada; (nil, nil) en otro caso.
	GetActiveByID(ctx context.Context, id int64) (*entity.Sale, error)
	// ListActive ventas no anuladas, más recientes primero. from/to nil = sin límite.
	ListActive(ctx context.Context, from, to *time.Time) ([]*entity.Sale, error)
	// MarkVoided marca la venta como anulada de forma atómica y devuelve la venta original.
	// Si no existe o ya estaba anulada devuelve domain.ErrNotFound.
	MarkVoided(ctx context.Context, id int64, approvedBy string, at time.Time) (*entity.Sale, error)
}
