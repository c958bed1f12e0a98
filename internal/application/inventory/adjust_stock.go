package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
)

// AdjustStockUseCase registra ajustes manuales de stock (conteos físicos,
// mermas, correcciones). Siempre exige motivo: los ajustes son los únicos
// movimientos sin documento origen y el motivo es su única trazabilidad.
type AdjustStockUseCase struct {
	mutator *Mutator
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(mutator *Mutator) *AdjustStockUseCase {
	return &AdjustStockUseCase{mutator: mutator}
}

// AdjustStock aplica el delta como evento adjustment del ledger.
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, companyID, actorID string, in dto.AdjustStockRequest) (*dto.StockHistoryResponse, error) {
	if in.ProductID == "" || in.QuantityChange.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.ErrInvalidInput
	}
	entry, err := uc.mutator.Apply(ctx, ApplyInput{
		CompanyID:   companyID,
		ProductID:   in.ProductID,
		Delta:       in.QuantityChange,
		Type:        entity.StockEventAdjustment,
		Reason:      in.Reason,
		ReferenceID: in.ReferenceID,
		ActorID:     actorID,
	})
	if err != nil {
		return nil, err
	}
	return dto.ToStockHistoryResponse(entry), nil
}
