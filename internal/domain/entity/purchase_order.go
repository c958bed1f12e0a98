package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. El ciclo de vida avanza estrictamente hacia
// adelante: draft → ordered → received → completed, sin saltos ni retrocesos.
const (
	POStatusDraft     = "draft"
	POStatusOrdered   = "ordered"
	POStatusReceived  = "received"
	POStatusCompleted = "completed"
)

var poStatusOrder = map[string]int{
	POStatusDraft:     0,
	POStatusOrdered:   1,
	POStatusReceived:  2,
	POStatusCompleted: 3,
}

// PurchaseOrder representa una orden de compra a un proveedor.
type PurchaseOrder struct {
	ID         string
	CompanyID  string
	SupplierID string
	Status     string
	Items      []PurchaseOrderItem
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PurchaseOrderItem es una línea de la orden (colección de valores, sin ciclo
// de vida propio).
type PurchaseOrderItem struct {
	ProductID        string
	QuantityOrdered  decimal.Decimal
	QuantityReceived decimal.Decimal
	UnitCost         decimal.Decimal
}

// CanTransition indica si pasar de Status a "to" avanza exactamente un estado.
func (po *PurchaseOrder) CanTransition(to string) bool {
	from, okFrom := poStatusOrder[po.Status]
	next, okTo := poStatusOrder[to]
	return okFrom && okTo && next == from+1
}

// ValidPOStatus indica si s es un estado conocido de orden de compra.
func ValidPOStatus(s string) bool {
	_, ok := poStatusOrder[s]
	return ok
}
