package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

// StockAdjuster aplica deltas con signo al stock. Es el único mutador de stock fuera de
// las ediciones de inventario: ventas restan, anulaciones reponen.
type StockAdjuster struct {
	log zerolog.Logger
}

// NewStockAdjuster construye el ajustador.
func NewStockAdjuster(log zerolog.Logger) *StockAdjuster {
	return &StockAdjuster{log: log.With().Str("component", "stock_adjuster").Logger()}
}

// Adjust aplica delta al producto usando el repositorio de la transacción en curso.
// Un producto inexistente no es error: se reporta como "skipped" y las demás líneas siguen.
// domain.ErrInsufficientStock sí se propaga para que el caller haga rollback.
func (a *StockAdjuster) Adjust(ctx context.Context, products repository.ProductRepository, productID int64, delta int) (entity.StockAdjustment, error) {
	adj := entity.StockAdjustment{ProductID: productID, Delta: delta}
	stock, err := products.AdjustStock(ctx, productID, delta)
	switch {
	case err == nil:
		adj.Status = entity.AdjustmentApplied
		a.log.Debug().Int64("product_id", productID).Int("delta", delta).Int("stock", stock).Msg("stock ajustado")
		return adj, nil
	case errors.Is(err, domain.ErrNotFound):
		adj.Status = entity.AdjustmentSkipped
		adj.Reason = "product not found"
		a.log.Warn().Int64("product_id", productID).Int("delta", delta).Msg("producto inexistente; línea omitida")
		return adj, nil
	case errors.Is(err, domain.ErrInsufficientStock):
		return adj, fmt.Errorf("%w: producto %d (disponible %d, solicitado %d)", domain.ErrInsufficientStock, productID, stock, -delta)
	default:
		return adj, fmt.Errorf("ajustar stock producto %d: %w", productID, err)
	}
}

// ApplyLines ajusta cada línea con sign*qty (sign -1 = venta, +1 = reposición).
// Se detiene en el primer error duro; los "skipped" no detienen el recorrido.
func (a *StockAdjuster) ApplyLines(ctx context.Context, products repository.ProductRepository, items []entity.SaleItem, sign int) ([]entity.StockAdjustment, error) {
	out := make([]entity.StockAdjustment, 0, len(items))
	for _, it := range items {
		adj, err := a.Adjust(ctx, products, it.ProductID, sign*it.Qty)
		if err != nil {
			return nil, err
		}
		out = append(out, adj)
	}
	return out, nil
}
