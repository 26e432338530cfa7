package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// KPIs del inventario actual y de las ventas activas (las anuladas no cuentan).
type DashboardSummaryDTO struct {
	TotalItems     int             `json:"total_items"`     // unidades en stock
	InventoryValue decimal.Decimal `json:"inventory_value"` // Σ price × stock
	TotalRevenue   decimal.Decimal `json:"total_revenue"`   // histórico

	TodaySales   decimal.Decimal `json:"today_sales"`
	TodayCount   int             `json:"today_count"`
	MonthlySales decimal.Decimal `json:"monthly_sales"`

	// Productos con stock por debajo del umbral de alerta, menor stock primero.
	LowStock []ProductResponse `json:"low_stock"`

	// Top productos del mes por ingreso.
	TopProducts []TopProductDTO `json:"top_products"`

	DateLabel string `json:"date_label"` // ej: "Octubre 2026"
}

// TopProductDTO resumen de un producto para el widget del tablero.
type TopProductDTO struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	QuantitySold int             `json:"quantity_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}
