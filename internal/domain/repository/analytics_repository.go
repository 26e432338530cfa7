package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buildmaster/backoffice-api/internal/domain/entity"
)

// InventoryTotals agregados del inventario actual.
type InventoryTotals struct {
	TotalItems int             // suma de unidades en stock
	TotalValue decimal.Decimal // suma de price × stock
}

// SalesTotals agregados de ventas activas en un período.
type SalesTotals struct {
	Count   int
	Revenue decimal.Decimal
}

// TopProductResult producto más vendido del período, calculado sobre el snapshot de las líneas.
type TopProductResult struct {
	ProductID int64
	Name      string
	QtySold   int
	Revenue   decimal.Decimal
}

// AnalyticsRepository consultas de lectura para el tablero. Las ventas anuladas nunca cuentan.
// Un límite nil en from/to significa período abierto; to es exclusivo.
type AnalyticsRepository interface {
	GetInventoryTotals(ctx context.Context) (InventoryTotals, error)

	// GetLowStock productos con stock < threshold, menor stock primero.
	GetLowStock(ctx context.Context, threshold int) ([]*entity.Product, error)

	GetSalesTotals(ctx context.Context, from, to *time.Time) (SalesTotals, error)

	// GetTopProducts los limit productos con mayor ingreso en el período.
	GetTopProducts(ctx context.Context, from, to *time.Time, limit int) ([]TopProductResult, error)
}
