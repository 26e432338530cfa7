package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del inventario.
// Stock nunca queda negativo en un estado confirmado; solo lo modifican ediciones
// de inventario, ventas (decremento) y anulaciones (reposición).
type Product struct {
	ID        int64
	Name      string
	Category  string
	Price     decimal.Decimal // precio unitario de venta, >= 0
	Stock     int             // cantidad disponible, >= 0
	Unit      string          // etiqueta de unidad: "Piece(s)", "Bag(s)", ...
	CreatedAt time.Time
	UpdatedAt time.Time
}
