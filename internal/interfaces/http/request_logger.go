package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/TiendaOps-api/pkg/logger"
)

// RequestLogger registra cada petición con método, ruta, status y latencia.
// Los errores 5xx suben a nivel error; el resto queda en info.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("company_id", GetCompanyID(c)).
			Msg("request")

		return err
	}
}
