package repository

import (
	"context"

	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
)

// ReturnRepository define el puerto de persistencia para devoluciones.
type ReturnRepository interface {
	Create(ctx context.Context, req *entity.ReturnRequest) error
	GetByID(ctx context.Context, companyID, id string) (*entity.ReturnRequest, error)
	// GetForUpdate bloquea la cabecera (serializa aprobaciones/reversión concurrentes).
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.ReturnRequest, error)
	// UpdateStatus cambia el estado y registra quién revisó (vacío al volver a pending).
	UpdateStatus(ctx context.Context, id, status, reviewedBy string) error
	ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.ReturnRequest, error)
}
