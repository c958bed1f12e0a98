package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo implementación del puerto ReturnRepository sobre PostgreSQL.
// Cabecera en returns, líneas en return_items.
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

// Create persiste la solicitud con sus líneas.
func (r *ReturnRepo) Create(ctx context.Context, req *entity.ReturnRequest) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO returns (id, company_id, transaction_id, status, created_by, reviewed_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		req.ID, req.CompanyID, req.TransactionID, req.Status, req.CreatedBy, req.ReviewedBy, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert return: %w", err)
	}
	for _, item := range req.Items {
		_, err := r.q.Exec(ctx,
			`INSERT INTO return_items (return_id, product_id, quantity) VALUES ($1, $2, $3)`,
			req.ID, item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert return item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la solicitud con sus líneas.
func (r *ReturnRepo) GetByID(ctx context.Context, companyID, id string) (*entity.ReturnRequest, error) {
	return r.get(ctx, companyID, id, false)
}

// GetForUpdate obtiene la solicitud bloqueando la cabecera (SELECT FOR UPDATE).
func (r *ReturnRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.ReturnRequest, error) {
	return r.get(ctx, companyID, id, true)
}

func (r *ReturnRepo) get(ctx context.Context, companyID, id string, forUpdate bool) (*entity.ReturnRequest, error) {
	query := `
		SELECT id, company_id, transaction_id, status, created_by, reviewed_by, created_at, updated_at
		FROM returns WHERE company_id = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var req entity.ReturnRequest
	err := r.q.QueryRow(ctx, query, companyID, id).Scan(
		&req.ID, &req.CompanyID, &req.TransactionID, &req.Status, &req.CreatedBy, &req.ReviewedBy, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get return: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT product_id, quantity FROM return_items WHERE return_id = $1 ORDER BY product_id`,
		req.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("list return items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ReturnItem
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan return item: %w", err)
		}
		req.Items = append(req.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateStatus cambia el estado y registra quién revisó (vacío al volver a pending).
func (r *ReturnRepo) UpdateStatus(ctx context.Context, id, status, reviewedBy string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE returns SET status = $2, reviewed_by = $3, updated_at = now() WHERE id = $1`,
		id, status, reviewedBy,
	)
	if err != nil {
		return fmt.Errorf("update return status: %w", err)
	}
	return nil
}

// ListByCompany lista solicitudes por empresa, opcionalmente filtradas por estado.
// Las cabeceras del listado no cargan líneas.
func (r *ReturnRepo) ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.ReturnRequest, error) {
	query := `
		SELECT id, company_id, transaction_id, status, created_by, reviewed_by, created_at, updated_at
		FROM returns WHERE company_id = $1`
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
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReturnRequest
	for rows.Next() {
		var req entity.ReturnRequest
		if err := rows.Scan(&req.ID, &req.CompanyID, &req.TransactionID, &req.Status, &req.CreatedBy, &req.ReviewedBy, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		list = append(list, &req)
	}
	return list, rows.Err()
}
