package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto (SKU) del catálogo de una empresa.
// StockQuantity es el saldo vigente del ledger y Version el contador para
// detección de concurrencia optimista: ambos se modifican únicamente a través
// del StockMutator. El resto de atributos (nombre, precio, umbral) se editan
// por CRUD normal sin tocar el saldo.
type Product struct {
	ID                string
	CompanyID         string
	SKU               string // código único por empresa
	Name              string
	BaseUnit          string          // unidad base: und, kg, lt...
	Price             decimal.Decimal // precio de venta
	LowStockThreshold decimal.Decimal // umbral de alerta de stock bajo (>= 0)
	StockQuantity     decimal.Decimal // saldo actual, nunca negativo
	Version           int64           // monotónico, incrementa en cada mutación de saldo
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
