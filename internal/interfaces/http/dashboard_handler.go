package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/buildmaster/backoffice-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del tablero de resumen.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve los KPIs de inventario y ventas.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (total_items, inventory_value, total_revenue, today_sales,
// today_count, monthly_sales, low_stock, top_products, date_label).
// Las fechas se calculan en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
