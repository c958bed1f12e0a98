package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
)

// Limiter puerto del rate limiter (implementado sobre Redis).
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitMiddleware limita por empresa las rutas de mutación de stock.
// Fail-open: si el limiter falla (Redis caído) la petición pasa, porque la
// disponibilidad de la API pesa más que el límite.
func RateLimitMiddleware(limiter Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}
		key := GetCompanyID(c)
		if key == "" {
			key = c.IP()
		}
		ok, err := limiter.Allow(c.Context(), key)
		if err != nil {
			return c.Next()
		}
		if !ok {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas peticiones, reintente más tarde"})
		}
		return c.Next()
	}
}
