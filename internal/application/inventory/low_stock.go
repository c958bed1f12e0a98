package inventory

import (
	"context"

	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
	domaininv "github.com/jhoicas/TiendaOps-api/internal/domain/inventory"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
)

// LowStockUseCase capa de consulta de solo lectura sobre el saldo vivo.
// Se recalcula bajo demanda desde ProductRepository; no mantiene caché propio
// para no convertirse en una segunda fuente de verdad.
type LowStockUseCase struct {
	productRepo repository.ProductRepository
}

// NewLowStockUseCase construye el caso de uso.
func NewLowStockUseCase(productRepo repository.ProductRepository) *LowStockUseCase {
	return &LowStockUseCase{productRepo: productRepo}
}

// GetLowStockProducts devuelve los productos con saldo <= umbral, marcando los agotados.
func (uc *LowStockUseCase) GetLowStockProducts(ctx context.Context, companyID string) ([]dto.LowStockItemDTO, error) {
	products, err := uc.productRepo.ListLowStock(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LowStockItemDTO, 0, len(products))
	for _, p := range products {
		level := domaininv.EvaluateLevel(p.StockQuantity, p.LowStockThreshold)
		items = append(items, dto.LowStockItemDTO{
			ProductID:         p.ID,
			SKU:               p.SKU,
			Name:              p.Name,
			StockQuantity:     p.StockQuantity,
			LowStockThreshold: p.LowStockThreshold,
			IsLow:             level.IsLow,
			IsOut:             level.IsOut,
		})
	}
	return items, nil
}
