package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale representa una venta finalizada. Su creación descuenta stock por cada
// línea a través del StockMutator dentro de una sola transacción.
type Sale struct {
	ID        string
	CompanyID string
	Total     decimal.Decimal
	Items     []SaleItem
	CreatedBy string
	CreatedAt time.Time
}

// SaleItem es una línea vendida.
type SaleItem struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}
