package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento del ledger de stock.
const (
	StockEventSale       = "sale"                   // venta finalizada
	StockEventReturn     = "return"                 // devolución aprobada (o su reversión)
	StockEventRestock    = "restock"                // reposición directa
	StockEventAdjustment = "adjustment"             // ajuste manual (requiere motivo)
	StockEventPOReceipt  = "purchase_order_receipt" // recepción de orden de compra
)

// StockHistory es un hecho inmutable del ledger: un cambio de saldo ya aplicado.
// Nunca se actualiza ni se elimina. Ordenadas por CreatedAt, las entradas de un
// producto forman una suma prefija cuyo acumulado coincide con QuantityAfter en
// cada paso y cuyo último valor es el StockQuantity vigente del producto.
type StockHistory struct {
	ID             string
	CompanyID      string
	ProductID      string
	Type           string
	QuantityChange decimal.Decimal // delta con signo
	QuantityAfter  decimal.Decimal // saldo inmediatamente después de aplicar el delta
	Reason         string          // obligatorio en ajustes manuales
	ReferenceID    string          // venta, devolución u orden de compra que originó la entrada
	CreatedBy      string
	CreatedAt      time.Time
}

// ValidStockEvent indica si t es un tipo de evento conocido del ledger.
func ValidStockEvent(t string) bool {
	switch t {
	case StockEventSale, StockEventReturn, StockEventRestock, StockEventAdjustment, StockEventPOReceipt:
		return true
	}
	return false
}
