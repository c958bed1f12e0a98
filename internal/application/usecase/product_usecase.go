package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
	"github.com/jhoicas/TiendaOps-api/pkg/logger"
)

// ProductUseCase CRUD de catálogo. Nunca escribe stock_quantity directamente:
// el stock inicial entra como ajuste del mutador y las ediciones posteriores
// solo tocan atributos.
type ProductUseCase struct {
	productRepo repository.ProductRepository
	mutator     *inventory.Mutator
	log         *logger.Logger
}

// NewProductUseCase construye el caso de uso de productos.
func NewProductUseCase(productRepo repository.ProductRepository, mutator *inventory.Mutator, log *logger.Logger) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, mutator: mutator, log: log}
}

// Create da de alta un producto con saldo cero. Si viene InitialStock > 0 se
// aplica después como ajuste "saldo inicial" vía mutador, de modo que la suma
// del historial reproduce el saldo desde el primer día.
func (uc *ProductUseCase) Create(ctx context.Context, companyID, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.IsNegative() || in.LowStockThreshold.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.InitialStock != nil && in.InitialStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.productRepo.GetBySKU(ctx, companyID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	baseUnit := in.BaseUnit
	if baseUnit == "" {
		baseUnit = "und"
	}
	product := &entity.Product{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		SKU:               in.SKU,
		Name:              in.Name,
		BaseUnit:          baseUnit,
		Price:             in.Price,
		LowStockThreshold: in.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	if in.InitialStock != nil && in.InitialStock.IsPositive() {
		entry, err := uc.mutator.Apply(ctx, inventory.ApplyInput{
			CompanyID: companyID,
			ProductID: product.ID,
			Delta:     *in.InitialStock,
			Type:      entity.StockEventAdjustment,
			Reason:    "saldo inicial",
			ActorID:   actorID,
		})
		if err != nil {
			// El producto ya existe; el saldo inicial se puede reintentar como ajuste.
			uc.log.Warn().Err(err).
				Str("product_id", product.ID).
				Msg("no se pudo aplicar el saldo inicial")
			return nil, err
		}
		product.StockQuantity = entry.QuantityAfter
	}
	return dto.ToProductResponse(product), nil
}

// Update modifica atributos del catálogo (nombre, unidad, precio, umbral).
// El saldo no se toca por esta vía.
func (uc *ProductUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != "" {
		product.Name = in.Name
	}
	if in.BaseUnit != "" {
		product.BaseUnit = in.BaseUnit
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.LowStockThreshold != nil {
		if in.LowStockThreshold.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.LowStockThreshold = *in.LowStockThreshold
	}
	product.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product), nil
}

// Get obtiene un producto de la empresa.
func (uc *ProductUseCase) Get(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return dto.ToProductResponse(product), nil
}

// List lista el catálogo de la empresa.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) ([]dto.ProductResponse, error) {
	page.DefaultPage()
	products, err := uc.productRepo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, *dto.ToProductResponse(p))
	}
	return out, nil
}
