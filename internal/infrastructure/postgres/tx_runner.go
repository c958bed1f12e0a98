package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
	"github.com/jhoicas/TiendaOps-api/internal/application/purchasing"
	"github.com/jhoicas/TiendaOps-api/internal/application/returns"
	"github.com/jhoicas/TiendaOps-api/internal/application/sales"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
)

// TxRunner cumple los puertos transaccionales de cada flujo.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ purchasing.TxRunner = (*TxRunner)(nil)
var _ returns.TxRunner = (*TxRunner)(nil)
var _ sales.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// inTx inicia una transacción, ejecuta fn y hace Commit o Rollback.
// Los fallos de concurrencia de PostgreSQL se traducen a domain.ErrConflict
// y el vencimiento de contexto a domain.ErrUnavailable.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.ErrUnavailable
		}
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConflict
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run transacción del mutador: producto + historial.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	historyRepo repository.StockHistoryRepository,
) error) error {
	return r.inTx(ctx, func(tx Querier) error {
		return fn(NewProductRepository(tx), NewStockHistoryRepository(tx))
	})
}

// RunPurchase transacción del flujo de órdenes de compra.
func (r *TxRunner) RunPurchase(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	historyRepo repository.StockHistoryRepository,
	poRepo repository.PurchaseOrderRepository,
) error) error {
	return r.inTx(ctx, func(tx Querier) error {
		return fn(NewProductRepository(tx), NewStockHistoryRepository(tx), NewPurchaseOrderRepository(tx))
	})
}

// RunReturn transacción del flujo de devoluciones.
func (r *TxRunner) RunReturn(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	historyRepo repository.StockHistoryRepository,
	returnRepo repository.ReturnRepository,
) error) error {
	return r.inTx(ctx, func(tx Querier) error {
		return fn(NewProductRepository(tx), NewStockHistoryRepository(tx), NewReturnRepository(tx))
	})
}

// RunSale transacción del flujo de ventas.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	historyRepo repository.StockHistoryRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.inTx(ctx, func(tx Querier) error {
		return fn(NewProductRepository(tx), NewStockHistoryRepository(tx), NewSaleRepository(tx))
	})
}
