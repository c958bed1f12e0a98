package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
)

// AdjustStockRequest body para POST /api/inventory/adjustments.
// QuantityChange lleva signo; Reason es obligatorio (auditoría de ajustes manuales).
type AdjustStockRequest struct {
	ProductID      string          `json:"product_id"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	Reason         string          `json:"reason"`
	ReferenceID    string          `json:"reference_id,omitempty"`
}

// StockHistoryQuery filtros para GET /api/inventory/history/:productId.
// From/To en formato RFC3339.
type StockHistoryQuery struct {
	Type string `query:"type"`
	From string `query:"from"`
	To   string `query:"to"`
	PageRequest
}

// StockHistoryResponse una entrada del ledger en respuestas HTTP.
type StockHistoryResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Type           string          `json:"type"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Reason         string          `json:"reason,omitempty"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToStockHistoryResponse convierte una entrada del ledger al DTO de salida.
func ToStockHistoryResponse(e *entity.StockHistory) *StockHistoryResponse {
	if e == nil {
		return nil
	}
	return &StockHistoryResponse{
		ID:             e.ID,
		ProductID:      e.ProductID,
		Type:           e.Type,
		QuantityChange: e.QuantityChange,
		QuantityAfter:  e.QuantityAfter,
		Reason:         e.Reason,
		ReferenceID:    e.ReferenceID,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
	}
}

// LowStockItemDTO un producto por debajo de su umbral (o agotado).
type LowStockItemDTO struct {
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	StockQuantity     decimal.Decimal `json:"stock_quantity"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	IsLow             bool            `json:"is_low"`
	IsOut             bool            `json:"is_out"`
}
