package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/application/sales"
)

const (
	pdfContentType  = "application/pdf"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// SalesHandler maneja checkout, anulación con aprobación de supervisor y consultas de ventas.
type SalesHandler struct {
	checkout *sales.CheckoutUseCase
	void     *sales.VoidUseCase
	query    *sales.QueryUseCase
}

// NewSalesHandler construye el handler de ventas.
func NewSalesHandler(checkout *sales.CheckoutUseCase, void *sales.VoidUseCase, query *sales.QueryUseCase) *SalesHandler {
	return &SalesHandler{checkout: checkout, void: void, query: query}
}

// Checkout godoc
// @Summary      Registrar venta
// @Description  Crea la venta, descuenta stock por línea y registra "Sale" en auditoría. Todo o nada.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body  dto.CheckoutRequest  true  "cart, total"
// @Success      201   {object}  dto.CheckoutResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/checkout [post]
func (h *SalesHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.checkout.Checkout(c.UserContext(), GetUsername(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// VerifySupervisor godoc
// @Summary      Autorizar anulación
// @Description  Re-autentica a un supervisor con capacidad void_authorize y emite un token de aprobación de corta vida.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body  dto.VerifySupervisorRequest  true  "username, password"
// @Success      200   {object}  dto.VerifySupervisorResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/verify-supervisor [post]
func (h *SalesHandler) VerifySupervisor(c *fiber.Ctx) error {
	var in dto.VerifySupervisorRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	approval, err := h.void.Authorize(c.UserContext(), in.Username, in.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.VerifySupervisorResponse{
		Success:       true,
		ApprovalToken: approval.Token(),
		ExpiresAt:     approval.ExpiresAt(),
	})
}

// Void godoc
// @Summary      Anular venta
// @Description  Restaura el stock de cada línea, marca la venta como anulada y registra "Void Transaction".
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path  int              true  "ID de la venta"
// @Param        body  body  dto.VoidRequest  true  "approvedBy, approvalToken"
// @Success      200   {object}  dto.VoidResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/void [post]
func (h *SalesHandler) Void(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in dto.VoidRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.void.Void(c.UserContext(), GetUsername(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas activas
// @Tags         sales
// @Produce      json
// @Security     Bearer
// @Param        from  query  string  false  "YYYY-MM-DD"
// @Param        to    query  string  false  "YYYY-MM-DD (inclusive)"
// @Success      200   {array}   dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SalesHandler) List(c *fiber.Ctx) error {
	var rng dto.DateRange
	if err := c.QueryParser(&rng); err != nil {
		return badBody(c)
	}
	list, err := h.query.List(c.UserContext(), rng)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Detalle de venta
// @Tags         sales
// @Produce      json
// @Security     Bearer
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SalesHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	out, err := h.query.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Recibo PDF
// @Tags         sales
// @Produce      application/pdf
// @Security     Bearer
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	body, filename, err := h.query.Receipt(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, pdfContentType, filename, body)
}

// Export godoc
// @Summary      Exportar ventas a Excel
// @Tags         sales
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     Bearer
// @Param        from  query  string  false  "YYYY-MM-DD"
// @Param        to    query  string  false  "YYYY-MM-DD (inclusive)"
// @Success      200   {file}    binary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sales/export [get]
func (h *SalesHandler) Export(c *fiber.Ctx) error {
	var rng dto.DateRange
	if err := c.QueryParser(&rng); err != nil {
		return badBody(c)
	}
	body, filename, err := h.query.Export(c.UserContext(), rng)
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, xlsxContentType, filename, body)
}

func sendFile(c *fiber.Ctx, contentType, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(body)
}

// parseID lee :id como entero positivo; si no lo es devuelve un *fiber.Error 400 que resuelve ErrorHandler.
func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id inválido")
	}
	return id, nil
}
