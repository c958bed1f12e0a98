package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Toda consulta va pre-acotada a la empresa (companyID).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	// GetForUpdate obtiene el producto y bloquea su fila (SELECT FOR UPDATE);
	// es el punto de serialización por producto del motor de stock.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error)
	// Update modifica atributos del catálogo; no toca stock_quantity ni version.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStockVersioned aplica el nuevo saldo solo si la versión coincide
	// (compare-and-swap); devuelve domain.ErrConflict si otra transacción ganó.
	UpdateStockVersioned(ctx context.Context, productID string, newQuantity decimal.Decimal, expectedVersion int64) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error)
	// ListLowStock devuelve los productos con saldo <= umbral de stock bajo.
	ListLowStock(ctx context.Context, companyID string) ([]*entity.Product, error)
}
