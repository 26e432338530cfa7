package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/buildmaster/backoffice-api/internal/application/audit"
)

// ActivityHandler consulta el registro de auditoría.
type ActivityHandler struct {
	uc *audit.QueryUseCase
}

// NewActivityHandler construye el handler.
func NewActivityHandler(uc *audit.QueryUseCase) *ActivityHandler {
	return &ActivityHandler{uc: uc}
}

// List godoc
// @Summary      Últimas entradas de auditoría
// @Description  Las 100 entradas más recientes, de la más nueva a la más antigua.
// @Tags         logs
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ActivityLogResponse
// @Router       /api/logs [get]
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListRecent(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Detalle de entrada de auditoría
// @Tags         logs
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la entrada"
// @Success      200  {object}  dto.ActivityLogDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/logs/{id} [get]
func (h *ActivityHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
