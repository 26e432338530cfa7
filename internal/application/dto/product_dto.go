package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductResponse salida de un producto del inventario.
type ProductResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Unit      string          `json:"unit"`
	UpdatedAt time.Time       `json:"updated_at"`
}
