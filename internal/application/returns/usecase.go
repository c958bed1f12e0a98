package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
	"github.com/jhoicas/TiendaOps-api/pkg/logger"
)

// TxRunner puerto transaccional del flujo de devoluciones.
type TxRunner interface {
	RunReturn(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		historyRepo repository.StockHistoryRepository,
		returnRepo repository.ReturnRepository,
	) error) error
}

// UseCase ciclo de vida de devoluciones: pending → {approved, rejected} y
// approved → pending (reversión). La aprobación restaura stock de TODAS las
// líneas y cambia el estado en una sola transacción: no existe aprobación
// parcial. El rechazo jamás toca stock. La reversión aplica los deltas
// negativos exactos y falla limpiamente (estado sigue approved) si el stock
// ya fue consumido.
type UseCase struct {
	txRunner    TxRunner
	returnRepo  repository.ReturnRepository
	productRepo repository.ProductRepository
	mutator     *inventory.Mutator
	log         *logger.Logger
	maxAttempts int
}

// NewUseCase construye el caso de uso. maxAttempts <= 0 usa 3.
func NewUseCase(
	txRunner TxRunner,
	returnRepo repository.ReturnRepository,
	productRepo repository.ProductRepository,
	mutator *inventory.Mutator,
	log *logger.Logger,
	maxAttempts int,
) *UseCase {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &UseCase{
		txRunner:    txRunner,
		returnRepo:  returnRepo,
		productRepo: productRepo,
		mutator:     mutator,
		log:         log,
		maxAttempts: maxAttempts,
	}
}

// Create registra una solicitud de devolución en estado pending (sin efecto en stock).
func (uc *UseCase) Create(ctx context.Context, companyID, actorID string, in dto.CreateReturnRequest) (*entity.ReturnRequest, error) {
	if in.TransactionID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	items := make([]entity.ReturnItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID == "" || !it.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(ctx, companyID, it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		items = append(items, entity.ReturnItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	now := time.Now()
	req := &entity.ReturnRequest{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		TransactionID: in.TransactionID,
		Status:        entity.ReturnStatusPending,
		Items:         items,
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.returnRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Approve restaura el stock de todas las líneas y marca approved, todo en una
// transacción. Si cualquier línea falla, nada queda aplicado y el estado sigue
// pending. Reintenta la transacción completa ante conflicto de versión.
func (uc *UseCase) Approve(ctx context.Context, companyID, actorID, returnID string) error {
	ctx, cancel := context.WithTimeout(ctx, uc.mutator.Timeout())
	defer cancel()

	var entries []*entity.StockHistory
	err := inventory.RetryOnConflict(ctx, uc.maxAttempts, func() error {
		entries = entries[:0]
		return uc.txRunner.RunReturn(ctx, func(
			productRepo repository.ProductRepository,
			historyRepo repository.StockHistoryRepository,
			returnRepo repository.ReturnRepository,
		) error {
			req, err := returnRepo.GetForUpdate(ctx, companyID, returnID)
			if err != nil {
				return err
			}
			if req == nil {
				return domain.ErrNotFound
			}
			if req.Status != entity.ReturnStatusPending {
				return domain.ErrInvalidTransition
			}
			for _, item := range req.Items {
				entry, err := uc.mutator.ApplyInTx(ctx, productRepo, historyRepo, inventory.ApplyInput{
					CompanyID:   companyID,
					ProductID:   item.ProductID,
					Delta:       item.Quantity,
					Type:        entity.StockEventReturn,
					ReferenceID: returnID,
					ActorID:     actorID,
				})
				if err != nil {
					return err
				}
				entries = append(entries, entry)
			}
			return returnRepo.UpdateStatus(ctx, returnID, entity.ReturnStatusApproved, actorID)
		})
	})
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, domain.ErrConflict) {
			return domain.ErrUnavailable
		}
		return err
	}
	uc.mutator.PublishChange(entries...)
	return nil
}

// Reject marca la devolución como rejected. Sin efecto sobre stock.
func (uc *UseCase) Reject(ctx context.Context, companyID, actorID, returnID string) error {
	return uc.txRunner.RunReturn(ctx, func(
		_ repository.ProductRepository,
		_ repository.StockHistoryRepository,
		returnRepo repository.ReturnRepository,
	) error {
		req, err := returnRepo.GetForUpdate(ctx, companyID, returnID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.Status != entity.ReturnStatusPending {
			return domain.ErrInvalidTransition
		}
		return returnRepo.UpdateStatus(ctx, returnID, entity.ReturnStatusRejected, actorID)
	})
}

// RevertToPending revierte una aprobación: aplica el delta negativo exacto de
// cada línea y vuelve a pending, en una transacción. Si alguna reversión
// dejaría saldo negativo (el stock ya se consumió desde la aprobación) la
// operación falla con domain.ErrConflict y el estado queda approved.
func (uc *UseCase) RevertToPending(ctx context.Context, companyID, actorID, returnID string) error {
	ctx, cancel := context.WithTimeout(ctx, uc.mutator.Timeout())
	defer cancel()

	var entries []*entity.StockHistory
	err := inventory.RetryOnConflict(ctx, uc.maxAttempts, func() error {
		entries = entries[:0]
		return uc.txRunner.RunReturn(ctx, func(
			productRepo repository.ProductRepository,
			historyRepo repository.StockHistoryRepository,
			returnRepo repository.ReturnRepository,
		) error {
			req, err := returnRepo.GetForUpdate(ctx, companyID, returnID)
			if err != nil {
				return err
			}
			if req == nil {
				return domain.ErrNotFound
			}
			if req.Status != entity.ReturnStatusApproved {
				return domain.ErrInvalidTransition
			}
			for _, item := range req.Items {
				entry, err := uc.mutator.ApplyInTx(ctx, productRepo, historyRepo, inventory.ApplyInput{
					CompanyID:   companyID,
					ProductID:   item.ProductID,
					Delta:       item.Quantity.Neg(),
					Type:        entity.StockEventReturn,
					ReferenceID: returnID,
					ActorID:     actorID,
				})
				if err != nil {
					if errors.Is(err, domain.ErrInsufficientStock) {
						// Accionable por el usuario: el stock restaurado ya se vendió.
						return fmt.Errorf("stock ya consumido desde la aprobación: %w", domain.ErrConflict)
					}
					return err
				}
				entries = append(entries, entry)
			}
			return returnRepo.UpdateStatus(ctx, returnID, entity.ReturnStatusPending, "")
		})
	})
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, domain.ErrConflict) {
			return domain.ErrUnavailable
		}
		return err
	}
	uc.mutator.PublishChange(entries...)
	return nil
}

// GetByID obtiene una devolución de la empresa.
func (uc *UseCase) GetByID(ctx context.Context, companyID, returnID string) (*entity.ReturnRequest, error) {
	req, err := uc.returnRepo.GetByID(ctx, companyID, returnID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// List lista devoluciones de la empresa, opcionalmente por estado.
func (uc *UseCase) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.ReturnRequest, error) {
	switch status {
	case "", entity.ReturnStatusPending, entity.ReturnStatusApproved, entity.ReturnStatusRejected:
	default:
		return nil, domain.ErrInvalidInput
	}
	return uc.returnRepo.ListByCompany(ctx, companyID, status, limit, offset)
}
