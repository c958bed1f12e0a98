package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
)

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID string                     `json:"supplier_id"`
	Items      []PurchaseOrderItemRequest `json:"items"`
}

// PurchaseOrderItemRequest una línea pedida.
type PurchaseOrderItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// ReceivePurchaseOrderRequest body para POST /api/purchase-orders/:id/receive.
// Solo se listan las líneas con cantidad recibida; el resto queda en 0.
type ReceivePurchaseOrderRequest struct {
	Items []ReceivedItemRequest `json:"items"`
}

// ReceivedItemRequest cantidad recibida de una línea.
type ReceivedItemRequest struct {
	ProductID        string          `json:"product_id"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
}

// PurchaseOrderItemResponse una línea en respuestas.
type PurchaseOrderItemResponse struct {
	ProductID        string          `json:"product_id"`
	QuantityOrdered  decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
}

// PurchaseOrderResponse una orden de compra en respuestas.
type PurchaseOrderResponse struct {
	ID         string                      `json:"id"`
	SupplierID string                      `json:"supplier_id"`
	Status     string                      `json:"status"`
	Items      []PurchaseOrderItemResponse `json:"items"`
	CreatedBy  string                      `json:"created_by"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// ToPurchaseOrderResponse convierte la entidad al DTO de salida.
func ToPurchaseOrderResponse(po *entity.PurchaseOrder) *PurchaseOrderResponse {
	if po == nil {
		return nil
	}
	items := make([]PurchaseOrderItemResponse, 0, len(po.Items))
	for _, it := range po.Items {
		items = append(items, PurchaseOrderItemResponse{
			ProductID:        it.ProductID,
			QuantityOrdered:  it.QuantityOrdered,
			QuantityReceived: it.QuantityReceived,
			UnitCost:         it.UnitCost,
		})
	}
	return &PurchaseOrderResponse{
		ID:         po.ID,
		SupplierID: po.SupplierID,
		Status:     po.Status,
		Items:      items,
		CreatedBy:  po.CreatedBy,
		CreatedAt:  po.CreatedAt,
		UpdatedAt:  po.UpdatedAt,
	}
}

// RestockResult resultado de un restock: qué líneas se acreditaron, cuáles ya
// lo estaban (idempotencia) y cuáles quedaron pendientes de reintento.
type RestockResult struct {
	PurchaseOrderID string               `json:"purchase_order_id"`
	Status          string               `json:"status"`
	Applied         []string             `json:"applied"`         // product_ids acreditados en esta invocación
	AlreadyApplied  []string             `json:"already_applied"` // ya tenían entrada en el ledger
	Pending         []RestockPendingItem `json:"pending"`         // reintentar re-invocando restock
}

// RestockPendingItem línea que no pudo acreditarse en esta invocación.
type RestockPendingItem struct {
	ProductID string `json:"product_id"`
	Error     string `json:"error"`
}
