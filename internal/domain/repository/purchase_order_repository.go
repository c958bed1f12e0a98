package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea la cabecera de la orden (serializa receive/restock concurrentes).
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// UpdateItemReceived registra la cantidad recibida de una línea.
	UpdateItemReceived(ctx context.Context, poID, productID string, quantityReceived decimal.Decimal) error
	ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseOrder, error)
}
