package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/buildmaster/backoffice-api/internal/application/usecase"
)

// InventoryHandler expone la consulta de productos e inventario (solo lectura).
type InventoryHandler struct {
	uc *usecase.ProductUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *usecase.ProductUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// List godoc
// @Summary      Listar inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ProductResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
