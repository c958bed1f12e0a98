package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
	"github.com/jhoicas/TiendaOps-api/pkg/logger"
)

// TxRunner puerto transaccional del flujo de ventas.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		historyRepo repository.StockHistoryRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// UseCase finaliza ventas: descuenta stock por línea a través del mutador y
// persiste la transacción, todo en UNA transacción de BD. Si alguna línea no
// tiene stock suficiente, la venta completa falla sin dejar rastro en el
// ledger: las ventas parciales están prohibidas.
type UseCase struct {
	txRunner    TxRunner
	saleRepo    repository.SaleRepository
	mutator     *inventory.Mutator
	log         *logger.Logger
	maxAttempts int
}

// NewUseCase construye el caso de uso. maxAttempts <= 0 usa 3.
func NewUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	mutator *inventory.Mutator,
	log *logger.Logger,
	maxAttempts int,
) *UseCase {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &UseCase{
		txRunner:    txRunner,
		saleRepo:    saleRepo,
		mutator:     mutator,
		log:         log,
		maxAttempts: maxAttempts,
	}
}

// RecordSale crea la venta y aplica -quantity por línea con reference_id = id
// de la venta. Reintenta la transacción completa ante conflicto de versión y
// corre bajo el mismo plazo que el mutador: un bloqueo atascado devuelve
// domain.ErrUnavailable en vez de colgar la venta.
func (uc *UseCase) RecordSale(ctx context.Context, companyID, actorID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.ProductID == "" || !it.Quantity.IsPositive() || it.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}

	ctx, cancel := context.WithTimeout(ctx, uc.mutator.Timeout())
	defer cancel()

	saleID := uuid.New().String()
	var sale *entity.Sale
	var entries []*entity.StockHistory

	err := inventory.RetryOnConflict(ctx, uc.maxAttempts, func() error {
		entries = entries[:0]
		return uc.txRunner.RunSale(ctx, func(
			productRepo repository.ProductRepository,
			historyRepo repository.StockHistoryRepository,
			saleRepo repository.SaleRepository,
		) error {
			total := decimal.Zero
			items := make([]entity.SaleItem, 0, len(in.Items))
			for _, it := range in.Items {
				entry, err := uc.mutator.ApplyInTx(ctx, productRepo, historyRepo, inventory.ApplyInput{
					CompanyID:   companyID,
					ProductID:   it.ProductID,
					Delta:       it.Quantity.Neg(),
					Type:        entity.StockEventSale,
					ReferenceID: saleID,
					ActorID:     actorID,
				})
				if err != nil {
					// Cualquier línea rechazada revierte la venta completa.
					return err
				}
				entries = append(entries, entry)
				items = append(items, entity.SaleItem{
					ProductID: it.ProductID,
					Quantity:  it.Quantity,
					UnitPrice: it.UnitPrice,
				})
				total = total.Add(it.Quantity.Mul(it.UnitPrice))
			}
			sale = &entity.Sale{
				ID:        saleID,
				CompanyID: companyID,
				Total:     total,
				Items:     items,
				CreatedBy: actorID,
				CreatedAt: time.Now(),
			}
			return saleRepo.Create(ctx, sale)
		})
	})
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, domain.ErrConflict) {
			err = domain.ErrUnavailable
		}
		return nil, err
	}
	uc.mutator.PublishChange(entries...)
	return dto.ToSaleResponse(sale), nil
}

// GetByID obtiene una venta de la empresa.
func (uc *UseCase) GetByID(ctx context.Context, companyID, saleID string) (*entity.Sale, error) {
	sale, err := uc.saleRepo.GetByID(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}
