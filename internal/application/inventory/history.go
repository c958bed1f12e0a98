package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
)

// StockHistoryUseCase consulta del ledger de un producto con filtros.
type StockHistoryUseCase struct {
	productRepo repository.ProductRepository
	historyRepo repository.StockHistoryRepository
}

// NewStockHistoryUseCase construye el caso de uso.
func NewStockHistoryUseCase(productRepo repository.ProductRepository, historyRepo repository.StockHistoryRepository) *StockHistoryUseCase {
	return &StockHistoryUseCase{productRepo: productRepo, historyRepo: historyRepo}
}

// GetStockHistory lista las entradas del ledger del producto, más recientes primero.
func (uc *StockHistoryUseCase) GetStockHistory(ctx context.Context, companyID, productID string, q dto.StockHistoryQuery) ([]*dto.StockHistoryResponse, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	q.DefaultPage()
	filter := repository.StockHistoryFilter{Limit: q.Limit, Offset: q.Offset}
	if q.Type != "" {
		if !entity.ValidStockEvent(q.Type) {
			return nil, domain.ErrInvalidInput
		}
		filter.Type = q.Type
	}
	if q.From != "" {
		t, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		filter.From = &t
	}
	if q.To != "" {
		t, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		filter.To = &t
	}

	entries, err := uc.historyRepo.ListByProduct(ctx, companyID, productID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.StockHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ToStockHistoryResponse(e))
	}
	return out, nil
}
