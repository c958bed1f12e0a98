package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
)

// InventoryHandler maneja ajustes manuales, historial y alertas de stock (protegido).
type InventoryHandler struct {
	adjust   *inventory.AdjustStockUseCase
	history  *inventory.StockHistoryUseCase
	lowStock *inventory.LowStockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(adjust *inventory.AdjustStockUseCase, history *inventory.StockHistoryUseCase, lowStock *inventory.LowStockUseCase) *InventoryHandler {
	return &InventoryHandler{adjust: adjust, history: history, lowStock: lowStock}
}

// AdjustStock godoc
// @Summary      Ajuste manual de stock
// @Description  Aplica un delta con signo al saldo del producto. El motivo es obligatorio y queda en el ledger.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, quantity_change (con signo, distinto de cero), reason"
// @Success      201   {object}  dto.StockHistoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.adjust.AdjustStock(c.Context(), companyID, userID, in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetHistory godoc
// @Summary      Historial de stock de un producto
// @Description  Entradas del ledger, más recientes primero. Filtros: type, from/to (RFC3339), limit/offset.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        type       query  string  false  "sale|return|restock|adjustment|purchase_order_receipt"
// @Param        from       query  string  false  "RFC3339"
// @Param        to         query  string  false  "RFC3339"
// @Param        limit      query  int     false  "máx 100, default 20"
// @Param        offset     query  int     false  "default 0"
// @Success      200  {array}   dto.StockHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/history/{productId} [get]
func (h *InventoryHandler) GetHistory(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var q dto.StockHistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.history.GetStockHistory(c.Context(), companyID, c.Params("productId"), q)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(out)
}

// GetLowStock godoc
// @Summary      Productos con stock bajo o agotado
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.lowStock.GetLowStockProducts(c.Context(), companyID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}
