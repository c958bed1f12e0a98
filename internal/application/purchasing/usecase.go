package purchasing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
	"github.com/jhoicas/TiendaOps-api/pkg/logger"
)

// TxRunner puerto transaccional del flujo de compras: ejecuta fn con los
// repositorios de producto, ledger y órdenes atados a una misma transacción.
type TxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		historyRepo repository.StockHistoryRepository,
		poRepo repository.PurchaseOrderRepository,
	) error) error
}

// UseCase ciclo de vida de órdenes de compra: draft → ordered → received →
// completed, estrictamente hacia adelante. El restock acredita stock línea a
// línea vía el mutador, con idempotencia derivada del ledger (reference_id).
type UseCase struct {
	txRunner    TxRunner
	poRepo      repository.PurchaseOrderRepository
	productRepo repository.ProductRepository
	mutator     *inventory.Mutator
	log         *logger.Logger
	maxAttempts int
}

// NewUseCase construye el caso de uso. maxAttempts <= 0 usa 3.
func NewUseCase(
	txRunner TxRunner,
	poRepo repository.PurchaseOrderRepository,
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
		poRepo:      poRepo,
		productRepo: productRepo,
		mutator:     mutator,
		log:         log,
		maxAttempts: maxAttempts,
	}
}

// Create crea una orden en estado draft tras validar proveedor, líneas y productos.
func (uc *UseCase) Create(ctx context.Context, companyID, actorID string, in dto.CreatePurchaseOrderRequest) (*entity.PurchaseOrder, error) {
	if in.SupplierID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	items := make([]entity.PurchaseOrderItem, 0, len(in.Items))
	seen := map[string]bool{}
	for _, it := range in.Items {
		if it.ProductID == "" || !it.Quantity.IsPositive() || it.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if seen[it.ProductID] {
			return nil, domain.ErrInvalidInput // líneas duplicadas por producto
		}
		seen[it.ProductID] = true
		product, err := uc.productRepo.GetByID(ctx, companyID, it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		items = append(items, entity.PurchaseOrderItem{
			ProductID:       it.ProductID,
			QuantityOrdered: it.Quantity,
			UnitCost:        it.UnitCost,
		})
	}
	now := time.Now()
	po := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		SupplierID: in.SupplierID,
		Status:     entity.POStatusDraft,
		Items:      items,
		CreatedBy:  actorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.poRepo.Create(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// MarkOrdered avanza draft → ordered (la orden fue enviada al proveedor).
func (uc *UseCase) MarkOrdered(ctx context.Context, companyID, poID string) error {
	return uc.advance(ctx, companyID, poID, entity.POStatusOrdered)
}

// advance mueve la orden exactamente un estado hacia adelante dentro de una transacción.
func (uc *UseCase) advance(ctx context.Context, companyID, poID, to string) error {
	return uc.txRunner.RunPurchase(ctx, func(
		_ repository.ProductRepository,
		_ repository.StockHistoryRepository,
		poRepo repository.PurchaseOrderRepository,
	) error {
		po, err := poRepo.GetForUpdate(ctx, companyID, poID)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.ErrNotFound
		}
		if !po.CanTransition(to) {
			return domain.ErrInvalidTransition
		}
		return poRepo.UpdateStatus(ctx, poID, to)
	})
}

// Receive registra cantidades recibidas por línea y avanza ordered → received.
// La recepción parcial es válida; ninguna línea puede exceder lo pedido.
func (uc *UseCase) Receive(ctx context.Context, companyID, poID string, in dto.ReceivePurchaseOrderRequest) error {
	if len(in.Items) == 0 {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.RunPurchase(ctx, func(
		_ repository.ProductRepository,
		_ repository.StockHistoryRepository,
		poRepo repository.PurchaseOrderRepository,
	) error {
		po, err := poRepo.GetForUpdate(ctx, companyID, poID)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.ErrNotFound
		}
		if !po.CanTransition(entity.POStatusReceived) {
			return domain.ErrInvalidTransition
		}
		lines := map[string]entity.PurchaseOrderItem{}
		for _, it := range po.Items {
			lines[it.ProductID] = it
		}
		for _, rec := range in.Items {
			line, ok := lines[rec.ProductID]
			if !ok {
				return domain.ErrNotFound
			}
			if !rec.QuantityReceived.IsPositive() || rec.QuantityReceived.GreaterThan(line.QuantityOrdered) {
				return domain.ErrInvalidInput
			}
			if err := poRepo.UpdateItemReceived(ctx, poID, rec.ProductID, rec.QuantityReceived); err != nil {
				return err
			}
		}
		return poRepo.UpdateStatus(ctx, poID, entity.POStatusReceived)
	})
}

// Restock acredita +quantity_received por cada línea recibida, una transacción
// por línea con reintento acotado ante conflicto. Idempotente por
// reference_id=poID: re-invocarlo tras un fallo parcial no duplica crédito y
// termina de aplicar lo pendiente; nunca revierte líneas ya aplicadas.
// Cuando no queda nada pendiente avanza received → completed.
func (uc *UseCase) Restock(ctx context.Context, companyID, actorID, poID string) (*dto.RestockResult, error) {
	po, err := uc.poRepo.GetByID(ctx, companyID, poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	if po.Status != entity.POStatusOrdered && po.Status != entity.POStatusReceived {
		return nil, domain.ErrInvalidTransition
	}

	result := &dto.RestockResult{
		PurchaseOrderID: poID,
		Status:          po.Status,
		Applied:         []string{},
		AlreadyApplied:  []string{},
		Pending:         []dto.RestockPendingItem{},
	}
	var entries []*entity.StockHistory
	receivable := 0

	for _, item := range po.Items {
		if !item.QuantityReceived.IsPositive() {
			continue
		}
		receivable++
		var entry *entity.StockHistory
		// Cada línea corre bajo su propio plazo: una fila bloqueada no cuelga
		// el restock completo, la línea queda en Pending y se reintenta después.
		lineCtx, cancel := context.WithTimeout(ctx, uc.mutator.Timeout())
		err := inventory.RetryOnConflict(lineCtx, uc.maxAttempts, func() error {
			return uc.txRunner.RunPurchase(lineCtx, func(
				productRepo repository.ProductRepository,
				historyRepo repository.StockHistoryRepository,
				_ repository.PurchaseOrderRepository,
			) error {
				e, err := uc.mutator.ApplyInTx(lineCtx, productRepo, historyRepo, inventory.ApplyInput{
					CompanyID:   companyID,
					ProductID:   item.ProductID,
					Delta:       item.QuantityReceived,
					Type:        entity.StockEventPOReceipt,
					ReferenceID: poID,
					ActorID:     actorID,
					Idempotent:  true,
				})
				if err != nil {
					return err
				}
				entry = e
				return nil
			})
		})
		cancel()
		if err != nil && lineCtx.Err() != nil && !errors.Is(err, domain.ErrConflict) {
			err = domain.ErrUnavailable
		}
		switch {
		case err == nil:
			result.Applied = append(result.Applied, item.ProductID)
			entries = append(entries, entry)
		case errors.Is(err, domain.ErrDuplicate):
			result.AlreadyApplied = append(result.AlreadyApplied, item.ProductID)
		default:
			uc.log.Warn().Err(err).
				Str("purchase_order_id", poID).
				Str("product_id", item.ProductID).
				Msg("línea de restock pendiente de reintento")
			result.Pending = append(result.Pending, dto.RestockPendingItem{
				ProductID: item.ProductID,
				Error:     err.Error(),
			})
		}
	}

	// Sin pendientes y con al menos una línea recibida: la orden queda
	// completed (pasando por received si venía de ordered).
	if receivable > 0 && len(result.Pending) == 0 {
		if po.Status == entity.POStatusOrdered {
			if err := uc.advance(ctx, companyID, poID, entity.POStatusReceived); err != nil {
				return nil, err
			}
		}
		if err := uc.advance(ctx, companyID, poID, entity.POStatusCompleted); err != nil {
			return nil, err
		}
		result.Status = entity.POStatusCompleted
	}

	uc.mutator.PublishChange(entries...)
	return result, nil
}

// GetByID obtiene una orden de la empresa.
func (uc *UseCase) GetByID(ctx context.Context, companyID, poID string) (*entity.PurchaseOrder, error) {
	po, err := uc.poRepo.GetByID(ctx, companyID, poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	return po, nil
}

// List lista órdenes de la empresa, opcionalmente por estado.
func (uc *UseCase) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	if status != "" && !entity.ValidPOStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	return uc.poRepo.ListByCompany(ctx, companyID, status, limit, offset)
}
