package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de stock:
// lectura del saldo, escritura del saldo nuevo y alta en el ledger son una
// sola unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		historyRepo repository.StockHistoryRepository,
	) error) error
}

// StockChangeEvent payload mínimo del evento de cambio de saldo que se publica
// al bus externo tras cada mutación confirmada: cada consumidor decide qué y
// cuánto refetchear.
type StockChangeEvent struct {
	CompanyID   string          `json:"company_id"`
	ProductID   string          `json:"product_id"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	EventType   string          `json:"event_type"`
}

// ChangeNotifier publica eventos hacia el bus externo. Best-effort: un fallo
// de publicación nunca falla ni bloquea la mutación que lo originó.
type ChangeNotifier interface {
	PublishStockChange(ctx context.Context, ev StockChangeEvent) error
}
