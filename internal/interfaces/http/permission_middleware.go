package http

import (
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/buildmaster/backoffice-api/internal/application/dto"
)

// RequirePermission devuelve un middleware que deja pasar si el token trae al menos una
// de las capacidades indicadas. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 Unauthorized → no hay identidad en el contexto.
//   - 403 Forbidden    → el usuario no tiene ninguna de las capacidades.
func RequirePermission(perms ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUsername(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "identidad no encontrada en el token",
			})
		}
		granted := GetPermissions(c)
		for _, p := range perms {
			if slices.Contains(granted, p) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "no tiene permiso para esta operación",
		})
	}
}
