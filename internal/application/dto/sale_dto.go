package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem línea del carrito enviada por el POS. Name y Price son el snapshot mostrado al cajero.
type CartItem struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty"`
}

// CheckoutRequest body para POST /api/checkout.
type CheckoutRequest struct {
	Cart  []CartItem      `json:"cart"`
	Total decimal.Decimal `json:"total"`
}

// AdjustmentDTO resultado del ajuste de stock de una línea.
type AdjustmentDTO struct {
	ProductID int64  `json:"productId"`
	Delta     int    `json:"delta"`
	Status    string `json:"status"` // applied | skipped
	Reason    string `json:"reason,omitempty"`
}

// CheckoutResponse salida de un checkout confirmado.
type CheckoutResponse struct {
	Success     bool            `json:"success"`
	SaleID      int64           `json:"saleId"`
	Date        time.Time       `json:"date"`
	Adjustments []AdjustmentDTO `json:"adjustments"`
}

// VerifySupervisorRequest body para POST /api/verify-supervisor.
type VerifySupervisorRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// VerifySupervisorResponse aprobación emitida: el token se presenta luego al anular.
type VerifySupervisorResponse struct {
	Success       bool      `json:"success"`
	ApprovalToken string    `json:"approvalToken"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// VoidRequest body para POST /api/sales/:id/void.
type VoidRequest struct {
	ApprovedBy    string `json:"approvedBy"`
	ApprovalToken string `json:"approvalToken"`
}

// VoidResponse salida de una anulación.
type VoidResponse struct {
	Message     string          `json:"message"`
	Adjustments []AdjustmentDTO `json:"adjustments"`
}

// SaleItemDTO línea de venta en respuestas.
type SaleItemDTO struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Qty      int             `json:"qty"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta activa con sus líneas (details) y un resumen legible (itemsSummary).
type SaleResponse struct {
	ID           int64           `json:"id"`
	Date         time.Time       `json:"date"`
	Total        decimal.Decimal `json:"total"`
	Cashier      string          `json:"cashier"`
	Details      []SaleItemDTO   `json:"details"`
	ItemsSummary string          `json:"itemsSummary"`
}
