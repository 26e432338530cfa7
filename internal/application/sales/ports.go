package sales

import (
	"context"
	"time"

	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a esa tx.
// Si fn retorna error se hace rollback: ni la venta ni los ajustes de stock quedan visibles.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// AuditRecorder sink del registro de actividad. Se invoca después del commit.
type AuditRecorder interface {
	Record(ctx context.Context, action, summary, actor string, meta entity.LogMetadata)
}

// ReceiptRenderer genera el recibo imprimible de una venta.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, businessName string, sale *entity.Sale) ([]byte, error)
}

// SalesExporter genera la planilla de ventas del rango pedido.
type SalesExporter interface {
	ExportSales(ctx context.Context, sales []*entity.Sale, from, to *time.Time) ([]byte, error)
}
