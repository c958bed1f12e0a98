package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
)

// CreateProductRequest body para POST /api/products.
// InitialStock (opcional) se registra como ajuste en el ledger, no como
// escritura directa del saldo, para que la reconciliación cierre desde el día cero.
type CreateProductRequest struct {
	SKU               string           `json:"sku"`
	Name              string           `json:"name"`
	BaseUnit          string           `json:"base_unit"`
	Price             decimal.Decimal  `json:"price"`
	LowStockThreshold decimal.Decimal  `json:"low_stock_threshold"`
	InitialStock      *decimal.Decimal `json:"initial_stock,omitempty"`
}

// UpdateProductRequest body para PUT /api/products/:id (atributos, nunca el saldo).
type UpdateProductRequest struct {
	Name              string           `json:"name,omitempty"`
	BaseUnit          string           `json:"base_unit,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold,omitempty"`
}

// ProductResponse un producto en respuestas.
type ProductResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	BaseUnit          string          `json:"base_unit"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	StockQuantity     decimal.Decimal `json:"stock_quantity"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToProductResponse convierte la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		BaseUnit:          p.BaseUnit,
		Price:             p.Price,
		LowStockThreshold: p.LowStockThreshold,
		StockQuantity:     p.StockQuantity,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
