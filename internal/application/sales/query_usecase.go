package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// QueryUseCase historial de ventas activas, recibo PDF y exportación XLSX.
type QueryUseCase struct {
	sales        repository.SaleRepository
	receipts     ReceiptRenderer
	exporter     SalesExporter
	businessName string
}

// NewQueryUseCase construye el caso de uso. receipts/exporter pueden ser nil si no se exponen.
func NewQueryUseCase(sales repository.SaleRepository, receipts ReceiptRenderer, exporter SalesExporter, businessName string) *QueryUseCase {
	return &QueryUseCase{sales: sales, receipts: receipts, exporter: exporter, businessName: businessName}
}

// List ventas activas (no anuladas), más recientes primero.
func (uc *QueryUseCase) List(ctx context.Context, rng dto.DateRange) ([]dto.SaleResponse, error) {
	from, to, err := ParseRange(rng)
	if err != nil {
		return nil, err
	}
	list, err := uc.sales.ListActive(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, ToSaleResponse(s))
	}
	return out, nil
}

// Get detalle de una venta activa.
func (uc *QueryUseCase) Get(ctx context.Context, id int64) (*dto.SaleResponse, error) {
	s, err := uc.activeSale(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToSaleResponse(s)
	return &out, nil
}

// Receipt genera el PDF del recibo. Devuelve bytes y nombre de archivo sugerido.
func (uc *QueryUseCase) Receipt(ctx context.Context, id int64) ([]byte, string, error) {
	if uc.receipts == nil {
		return nil, "", fmt.Errorf("recibos no configurados")
	}
	s, err := uc.activeSale(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.receipts.RenderReceipt(ctx, uc.businessName, s)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("recibo_%d.pdf", s.ID), nil
}

// Export planilla XLSX de las ventas activas del rango.
func (uc *QueryUseCase) Export(ctx context.Context, rng dto.DateRange) ([]byte, string, error) {
	if uc.exporter == nil {
		return nil, "", fmt.Errorf("exportación no configurada")
	}
	from, to, err := ParseRange(rng)
	if err != nil {
		return nil, "", err
	}
	list, err := uc.sales.ListActive(ctx, from, to)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.exporter.ExportSales(ctx, list, from, to)
	if err != nil {
		return nil, "", fmt.Errorf("exportación fallida: %w", err)
	}
	name := "ventas.xlsx"
	if rng.From != "" || rng.To != "" {
		name = fmt.Sprintf("ventas_%s_%s.xlsx", orAll(rng.From), orAll(rng.To))
	}
	return data, name, nil
}

func (uc *QueryUseCase) activeSale(ctx context.Context, id int64) (*entity.Sale, error) {
	s, err := uc.sales.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// ParseRange interpreta from/to (YYYY-MM-DD, UTC). to es inclusivo: se convierte al inicio del día siguiente.
func ParseRange(rng dto.DateRange) (from, to *time.Time, err error) {
	if rng.From != "" {
		t, err := time.Parse(dateLayout, rng.From)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: from debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
		}
		from = &t
	}
	if rng.To != "" {
		t, err := time.Parse(dateLayout, rng.To)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: to debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
		}
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, fmt.Errorf("%w: from debe ser anterior o igual a to", domain.ErrInvalidInput)
	}
	return from, to, nil
}

// ToSaleResponse mapea la venta con sus líneas y el resumen legible.
func ToSaleResponse(s *entity.Sale) dto.SaleResponse {
	details := make([]dto.SaleItemDTO, 0, len(s.Items))
	for _, it := range s.Items {
		details = append(details, dto.SaleItemDTO{
			ID:       it.ProductID,
			Name:     it.Name,
			Price:    it.Price,
			Qty:      it.Qty,
			Subtotal: it.Subtotal(),
		})
	}
	return dto.SaleResponse{
		ID:           s.ID,
		Date:         s.Date,
		Total:        s.Total,
		Cashier:      s.CreatedBy,
		Details:      details,
		ItemsSummary: s.ItemsSummary(),
	}
}

func orAll(s string) string {
	if s == "" {
		return "todo"
	}
	return s
}
