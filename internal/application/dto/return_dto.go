package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
)

// CreateReturnRequest body para POST /api/returns.
type CreateReturnRequest struct {
	TransactionID string              `json:"transaction_id"`
	Items         []ReturnItemRequest `json:"items"`
}

// ReturnItemRequest una línea devuelta.
type ReturnItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ReturnItemResponse una línea devuelta en respuestas.
type ReturnItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ReturnResponse una devolución en respuestas.
type ReturnResponse struct {
	ID            string               `json:"id"`
	TransactionID string               `json:"transaction_id"`
	Status        string               `json:"status"`
	Items         []ReturnItemResponse `json:"items"`
	CreatedBy     string               `json:"created_by"`
	ReviewedBy    string               `json:"reviewed_by,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// ToReturnResponse convierte la entidad al DTO de salida.
func ToReturnResponse(r *entity.ReturnRequest) *ReturnResponse {
	if r == nil {
		return nil
	}
	items := make([]ReturnItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ReturnItemResponse{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return &ReturnResponse{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		Status:        r.Status,
		Items:         items,
		CreatedBy:     r.CreatedBy,
		ReviewedBy:    r.ReviewedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
