package entity

// Estados del resultado de un ajuste de stock por línea.
const (
	AdjustmentApplied = "applied"
	AdjustmentSkipped = "skipped"
)

// StockAdjustment resultado de aplicar un delta con signo al stock de un producto.
// Un producto inexistente no aborta las demás líneas: queda como "skipped".
type StockAdjustment struct {
	ProductID int64
	Delta     int
	Status    string
	Reason    string
}
