package sales

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

// CheckoutUseCase confirma ventas del POS: venta + descuento de stock en una transacción,
// y luego la entrada "Sale" en el registro de actividad.
type CheckoutUseCase struct {
	tx       TxRunner
	adjuster *StockAdjuster
	audit    AuditRecorder
	log      zerolog.Logger
}

// NewCheckoutUseCase construye el caso de uso inyectando sus dependencias.
func NewCheckoutUseCase(tx TxRunner, adjuster *StockAdjuster, audit AuditRecorder, log zerolog.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		tx:       tx,
		adjuster: adjuster,
		audit:    audit,
		log:      log.With().Str("component", "checkout").Logger(),
	}
}

// Checkout persiste la venta del carrito a nombre de actor.
//
// Retorna:
//   - domain.ErrInvalidInput      carrito vacío, cantidades/precios inválidos o total que no cuadra (sin escrituras).
//   - domain.ErrInsufficientStock alguna línea dejaría stock negativo (rollback completo).
func (uc *CheckoutUseCase) Checkout(ctx context.Context, actor string, in dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	items, err := validateCart(in)
	if err != nil {
		return nil, err
	}

	sale := &entity.Sale{Items: items, Total: in.Total, CreatedBy: actor}
	var adjustments []entity.StockAdjustment

	err = uc.tx.RunSales(ctx, func(saleRepo repository.SaleRepository, productRepo repository.ProductRepository) error {
		if err := saleRepo.Create(ctx, sale); err != nil {
			return fmt.Errorf("crear venta: %w", err)
		}
		adj, err := uc.adjuster.ApplyLines(ctx, productRepo, sale.Items, -1)
		if err != nil {
			return err
		}
		adjustments = adj
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, entity.ActionSale, fmt.Sprintf("Sale #%d", sale.ID), actor, entity.SaleMetadata{
		Items:  sale.Items,
		Total:  sale.Total,
		SaleID: sale.ID,
	})
	uc.log.Info().Int64("sale_id", sale.ID).Str("user", actor).Str("total", sale.Total.StringFixed(2)).Msg("venta confirmada")

	return &dto.CheckoutResponse{
		Success:     true,
		SaleID:      sale.ID,
		Date:        sale.Date,
		Adjustments: toAdjustmentDTOs(adjustments),
	}, nil
}

// maxLineQty tope por línea; el stock es INTEGER en PostgreSQL.
const maxLineQty = math.MaxInt32

// validateCart rechaza el carrito antes de cualquier escritura.
func validateCart(in dto.CheckoutRequest) ([]entity.SaleItem, error) {
	if len(in.Cart) == 0 {
		return nil, fmt.Errorf("%w: el carrito está vacío", domain.ErrInvalidInput)
	}
	items := make([]entity.SaleItem, 0, len(in.Cart))
	sum := decimal.Zero
	for i, c := range in.Cart {
		if c.ID <= 0 {
			return nil, fmt.Errorf("%w: línea %d sin producto", domain.ErrInvalidInput, i+1)
		}
		if c.Qty <= 0 || c.Qty > maxLineQty {
			return nil, fmt.Errorf("%w: línea %d con cantidad %d", domain.ErrInvalidInput, i+1, c.Qty)
		}
		if c.Price.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d con precio negativo", domain.ErrInvalidInput, i+1)
		}
		item := entity.SaleItem{ProductID: c.ID, Name: c.Name, Price: c.Price, Qty: c.Qty}
		sum = sum.Add(item.Subtotal())
		items = append(items, item)
	}
	if !sum.Equal(in.Total) {
		return nil, fmt.Errorf("%w: total %s no coincide con la suma de líneas %s",
			domain.ErrInvalidInput, in.Total.String(), sum.String())
	}
	return items, nil
}

func toAdjustmentDTOs(list []entity.StockAdjustment) []dto.AdjustmentDTO {
	out := make([]dto.AdjustmentDTO, 0, len(list))
	for _, a := range list {
		out = append(out, dto.AdjustmentDTO{
			ProductID: a.ProductID,
			Delta:     a.Delta,
			Status:    a.Status,
			Reason:    a.Reason,
		})
	}
	return out
}
