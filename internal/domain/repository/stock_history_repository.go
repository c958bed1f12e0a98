package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
)

// StockHistoryFilter filtros para consultar el ledger de un producto.
type StockHistoryFilter struct {
	Type   string // vacío = todos los tipos
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// StockHistoryRepository define el puerto de persistencia del ledger.
// Solo hay Create y lecturas: las entradas jamás se actualizan ni se borran.
type StockHistoryRepository interface {
	Create(ctx context.Context, entry *entity.StockHistory) error
	ListByProduct(ctx context.Context, companyID, productID string, f StockHistoryFilter) ([]*entity.StockHistory, error)
	// ExistsByReference indica si ya hay una entrada (producto, referencia, tipo);
	// soporta la idempotencia del restock por orden de compra.
	ExistsByReference(ctx context.Context, productID, referenceID, eventType string) (bool, error)
	// SumByProduct suma quantity_change de todas las entradas del producto
	// (reconciliación contra el saldo vigente).
	SumByProduct(ctx context.Context, companyID, productID string) (decimal.Decimal, error)
}
