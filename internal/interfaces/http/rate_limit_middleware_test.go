package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/TiendaOps-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

// fakeLimiter implementa apphttp.Limiter con respuestas programadas.
// Registra las keys recibidas para verificar que se limita por empresa.
type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.err
}

// buildRateLimitApp monta el middleware delante de un handler dummy.
// setCompany simula un request ya autenticado (company_id en locals).
func buildRateLimitApp(limiter apphttp.Limiter, companyID string) *fiber.App {
	app := fiber.New()
	app.Post("/stock",
		func(c *fiber.Ctx) error {
			if companyID != "" {
				c.Locals("company_id", companyID)
			}
			return c.Next()
		},
		apphttp.RateLimitMiddleware(limiter),
		func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		},
	)
	return app
}

func doPost(t *testing.T, app *fiber.App) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/stock", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRateLimit_DentroDelLimitePasa(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	app := buildRateLimitApp(limiter, testCompanyID)

	resp := doPost(t, app)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	// La key de limitación es la empresa, no la IP
	require.Len(t, limiter.keys, 1)
	assert.Equal(t, testCompanyID, limiter.keys[0])
}

func TestRateLimit_ExcedidoDevuelve429(t *testing.T) {
	limiter := &fakeLimiter{allow: false}
	app := buildRateLimitApp(limiter, testCompanyID)

	resp := doPost(t, app)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimit_FailOpenSiRedisCae(t *testing.T) {
	// Si el limiter falla, la petición debe pasar igual
	limiter := &fakeLimiter{allow: false, err: errors.New("redis: connection refused")}
	app := buildRateLimitApp(limiter, testCompanyID)

	resp := doPost(t, app)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRateLimit_SinLimiterPasa(t *testing.T) {
	app := buildRateLimitApp(nil, testCompanyID)

	resp := doPost(t, app)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRateLimit_SinEmpresaUsaIP(t *testing.T) {
	// Request sin autenticar: la key cae a la IP del cliente
	limiter := &fakeLimiter{allow: true}
	app := buildRateLimitApp(limiter, "")

	resp := doPost(t, app)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, limiter.keys, 1)
	assert.NotEmpty(t, limiter.keys[0])
	assert.NotEqual(t, testCompanyID, limiter.keys[0])
}
