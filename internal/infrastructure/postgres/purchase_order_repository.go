package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación del puerto PurchaseOrderRepository sobre
// PostgreSQL. Cabecera en purchase_orders, líneas en purchase_order_items.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create persiste la orden con sus líneas.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO purchase_orders (id, company_id, supplier_id, status, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		po.ID, po.CompanyID, po.SupplierID, po.Status, po.CreatedBy, po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for _, item := range po.Items {
		_, err := r.q.Exec(ctx,
			`INSERT INTO purchase_order_items (po_id, product_id, quantity_ordered, quantity_received, unit_cost)
			 VALUES ($1, $2, $3, $4, $5)`,
			po.ID, item.ProductID, item.QuantityOrdered, item.QuantityReceived, item.UnitCost,
		)
		if err != nil {
			return fmt.Errorf("insert purchase order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, companyID, id, false)
}

// GetForUpdate obtiene la orden bloqueando la cabecera (SELECT FOR UPDATE).
// Serializa receive/restock concurrentes sobre la misma orden.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, companyID, id, true)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, companyID, id string, forUpdate bool) (*entity.PurchaseOrder, error) {
	query := `
		SELECT id, company_id, supplier_id, status, created_by, created_at, updated_at
		FROM purchase_orders WHERE company_id = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var po entity.PurchaseOrder
	err := r.q.QueryRow(ctx, query, companyID, id).Scan(
		&po.ID, &po.CompanyID, &po.SupplierID, &po.Status, &po.CreatedBy, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	items, err := r.loadItems(ctx, po.ID)
	if err != nil {
		return nil, err
	}
	po.Items = items
	return &po, nil
}

func (r *PurchaseOrderRepo) loadItems(ctx context.Context, poID string) ([]entity.PurchaseOrderItem, error) {
	rows, err := r.q.Query(ctx,
		`SELECT product_id, quantity_ordered, quantity_received, unit_cost
		 FROM purchase_order_items WHERE po_id = $1 ORDER BY product_id`,
		poID,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchase order items: %w", err)
	}
	defer rows.Close()
	var items []entity.PurchaseOrderItem
	for rows.Next() {
		var it entity.PurchaseOrderItem
		if err := rows.Scan(&it.ProductID, &it.QuantityOrdered, &it.QuantityReceived, &it.UnitCost); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateStatus cambia el estado de la orden.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE purchase_orders SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	return nil
}

// UpdateItemReceived registra la cantidad recibida de una línea.
func (r *PurchaseOrderRepo) UpdateItemReceived(ctx context.Context, poID, productID string, quantityReceived decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE purchase_order_items SET quantity_received = $3 WHERE po_id = $1 AND product_id = $2`,
		poID, productID, quantityReceived,
	)
	if err != nil {
		return fmt.Errorf("update purchase order item: %w", err)
	}
	return nil
}

// ListByCompany lista órdenes por empresa, opcionalmente filtradas por estado.
// Las cabeceras del listado no cargan líneas.
func (r *PurchaseOrderRepo) ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	query := `
		SELECT id, company_id, supplier_id, status, created_by, created_at, updated_at
		FROM purchase_orders WHERE company_id = $1`
	args := []any{companyID}
	if status != "" {
		query += ` AND status = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		args = append(args, status, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		var po entity.PurchaseOrder
		if err := rows.Scan(&po.ID, &po.CompanyID, &po.SupplierID, &po.Status, &po.CreatedBy, &po.CreatedAt, &po.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, &po)
	}
	return list, rows.Err()
}
