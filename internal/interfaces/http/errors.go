package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/domain"
)

// domainStatus asocia cada error de dominio a su status HTTP y código estable.
var domainStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUserNotFound, fiber.StatusBadRequest, "USER_NOT_FOUND"},
	{domain.ErrInvalidPassword, fiber.StatusBadRequest, "INVALID_PASSWORD"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrNotAuthorized, fiber.StatusForbidden, "NOT_AUTHORIZED"},
	{domain.ErrApprovalRequired, fiber.StatusForbidden, "APPROVAL_REQUIRED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUsernameTaken, fiber.StatusConflict, "USERNAME_TAKEN"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
}

// respondError traduce err a la respuesta JSON correspondiente.
// Los errores no reconocidos se registran y se responden como 500 sin exponer el detalle.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range domainStatus {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	zerolog.Ctx(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// ErrorHandler handler de errores para fiber.Config: respeta *fiber.Error y oculta el resto.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
	}
}
