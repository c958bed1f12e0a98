package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
)

var _ repository.StockHistoryRepository = (*StockHistoryRepo)(nil)

// StockHistoryRepo implementación del puerto StockHistoryRepository sobre PostgreSQL.
// La tabla es append-only: solo INSERT y SELECT.
type StockHistoryRepo struct {
	q Querier
}

// NewStockHistoryRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockHistoryRepository(q Querier) *StockHistoryRepo {
	return &StockHistoryRepo{q: q}
}

// Create inserta una entrada del ledger.
func (r *StockHistoryRepo) Create(ctx context.Context, entry *entity.StockHistory) error {
	query := `
		INSERT INTO stock_history (id, company_id, product_id, type, quantity_change, quantity_after, reason, reference_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.CompanyID, entry.ProductID, entry.Type,
		entry.QuantityChange, entry.QuantityAfter, entry.Reason,
		entry.ReferenceID, entry.CreatedBy, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock history: %w", err)
	}
	return nil
}

// ListByProduct lista las entradas del producto, más recientes primero,
// con filtros opcionales por tipo y rango de fechas.
func (r *StockHistoryRepo) ListByProduct(ctx context.Context, companyID, productID string, f repository.StockHistoryFilter) ([]*entity.StockHistory, error) {
	query := `
		SELECT id, company_id, product_id, type, quantity_change, quantity_after, reason, reference_id, created_by, created_at
		FROM stock_history WHERE company_id = $1 AND product_id = $2`
	args := []any{companyID, productID}
	pos := 3
	if f.Type != "" {
		query += ` AND type = $` + strconv.Itoa(pos)
		args = append(args, f.Type)
		pos++
	}
	if f.From != nil {
		query += ` AND created_at >= $` + strconv.Itoa(pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += ` AND created_at <= $` + strconv.Itoa(pos)
		args = append(args, *f.To)
		pos++
	}
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(pos) + ` OFFSET $` + strconv.Itoa(pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock history: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockHistory
	for rows.Next() {
		var e entity.StockHistory
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.ProductID, &e.Type, &e.QuantityChange,
			&e.QuantityAfter, &e.Reason, &e.ReferenceID, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock history: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// ExistsByReference indica si ya hay una entrada (producto, referencia, tipo).
// Es la base de la idempotencia del restock: el hecho ya aplicado vive en el
// propio ledger, no en una tabla aparte.
func (r *StockHistoryRepo) ExistsByReference(ctx context.Context, productID, referenceID, eventType string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM stock_history WHERE product_id = $1 AND reference_id = $2 AND type = $3)`,
		productID, referenceID, eventType,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists stock history: %w", err)
	}
	return exists, nil
}

// SumByProduct suma quantity_change de todas las entradas del producto.
func (r *StockHistoryRepo) SumByProduct(ctx context.Context, companyID, productID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity_change), 0) FROM stock_history WHERE company_id = $1 AND product_id = $2`,
		companyID, productID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum stock history: %w", err)
	}
	return sum, nil
}
