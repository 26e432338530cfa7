package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RequestLogger registra cada petición con zerolog y deja un logger con el request id
// en el UserContext para que las capas internas lo recuperen con zerolog.Ctx.
// Debe ir después de requestid.New().
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqLog := log.With().Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).Logger()
		c.SetUserContext(reqLog.WithContext(c.UserContext()))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := reqLog.Info()
		if status >= fiber.StatusInternalServerError {
			ev = reqLog.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user", GetUsername(c)).
			Msg("request")
		return err
	}
}
