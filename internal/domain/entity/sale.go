package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SaleItem línea de una venta. Nombre y precio son una copia tomada al momento
// de la venta para que el recibo histórico no cambie si luego se edita el producto.
// Se persiste como JSON, por eso lleva tags.
type SaleItem struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
}

// Subtotal precio x cantidad de la línea.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// Sale venta confirmada. Una vez anulada (VoidedAt != nil) es terminal.
type Sale struct {
	ID        int64
	Date      time.Time
	Items     []SaleItem
	Total     decimal.Decimal
	CreatedBy string // username del cajero
	VoidedAt  *time.Time
	VoidedBy  string // username del supervisor que aprobó la anulación
}

// IsVoided indica si la venta ya fue anulada.
func (s *Sale) IsVoided() bool {
	return s.VoidedAt != nil
}

// ItemsSummary resumen legible de las líneas: "Cement (x5), Steel Bar (x2)".
func (s *Sale) ItemsSummary() string {
	parts := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		parts = append(parts, fmt.Sprintf("%s (x%d)", it.Name, it.Qty))
	}
	return strings.Join(parts, ", ")
}
