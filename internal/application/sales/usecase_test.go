package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
	"github.com/jhoicas/TiendaOps-api/internal/application/sales"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
	"github.com/jhoicas/TiendaOps-api/internal/infrastructure/memory"
	"github.com/jhoicas/TiendaOps-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "00000000-0000-0000-0000-0000000000c1"
	testCajeroID  = "00000000-0000-0000-0000-0000000000u2"
	productA      = "00000000-0000-0000-0000-0000000000a1"
	productB      = "00000000-0000-0000-0000-0000000000b1"
)

// fixture arma un store con A (stock 10) y B (stock 2).
func fixture(t *testing.T) (*memory.Store, *sales.UseCase) {
	t.Helper()
	store := memory.NewStore()
	now := time.Now()
	ctx := context.Background()
	for id, qty := range map[string]string{productA: "10", productB: "2"} {
		sku := "SKU-A"
		if id == productB {
			sku = "SKU-B"
		}
		require.NoError(t, store.Products().Create(ctx, &entity.Product{
			ID: id, CompanyID: testCompanyID, SKU: sku, Name: sku,
			BaseUnit: "und", Price: decimal.RequireFromString("10"),
			StockQuantity: decimal.RequireFromString(qty),
			CreatedAt:     now, UpdatedAt: now,
		}))
	}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	mutator := inventory.NewMutator(store, nil, log, 3, 5*time.Second)
	return store, sales.NewUseCase(store, store.Sales(), mutator, log, 3)
}

func stockOf(t *testing.T, store *memory.Store, id string) decimal.Decimal {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), testCompanyID, id)
	require.NoError(t, err)
	return p.StockQuantity
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordSale
// ──────────────────────────────────────────────────────────────────────────────

// Una venta válida descuenta cada línea, calcula el total y deja las entradas
// sale en el ledger con la venta como referencia.
func TestRecordSale_DescuentaYPersiste(t *testing.T) {
	store, uc := fixture(t)
	ctx := context.Background()

	resp, err := uc.RecordSale(ctx, testCompanyID, testCajeroID, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: productA, Quantity: decimal.RequireFromString("3"), UnitPrice: decimal.RequireFromString("12.50")},
			{ProductID: productB, Quantity: decimal.RequireFromString("1"), UnitPrice: decimal.RequireFromString("4")},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.True(t, resp.Total.Equal(decimal.RequireFromString("41.50")), "3*12.50 + 1*4")
	assert.Len(t, resp.Items, 2)
	assert.True(t, stockOf(t, store, productA).Equal(decimal.RequireFromString("7")))
	assert.True(t, stockOf(t, store, productB).Equal(decimal.RequireFromString("1")))

	// La venta quedó persistida y las entradas del ledger la referencian.
	sale, err := uc.GetByID(ctx, testCompanyID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, testCajeroID, sale.CreatedBy)

	entries, err := store.History().ListByProduct(ctx, testCompanyID, productA, repository.StockHistoryFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.StockEventSale, entries[0].Type)
	assert.Equal(t, resp.ID, entries[0].ReferenceID)
}

// Si una línea no tiene stock, la venta completa falla: ni descuentos parciales
// ni venta persistida ni rastro en el ledger.
func TestRecordSale_TodoONada(t *testing.T) {
	store, uc := fixture(t)
	ctx := context.Background()

	_, err := uc.RecordSale(ctx, testCompanyID, testCajeroID, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: productA, Quantity: decimal.RequireFromString("3"), UnitPrice: decimal.RequireFromString("10")},
			{ProductID: productB, Quantity: decimal.RequireFromString("5"), UnitPrice: decimal.RequireFromString("10")},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock, "B solo tiene 2 unidades")

	assert.True(t, stockOf(t, store, productA).Equal(decimal.RequireFromString("10")),
		"la línea A se revierte aunque tenía stock de sobra")
	assert.True(t, stockOf(t, store, productB).Equal(decimal.RequireFromString("2")))

	entries, err := store.History().ListByProduct(ctx, testCompanyID, productA, repository.StockHistoryFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecordSale_ValidaEntrada(t *testing.T) {
	_, uc := fixture(t)
	ctx := context.Background()

	_, err := uc.RecordSale(ctx, testCompanyID, testCajeroID, dto.CreateSaleRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = uc.RecordSale(ctx, testCompanyID, testCajeroID, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: productA, Quantity: decimal.Zero, UnitPrice: decimal.RequireFromString("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad no positiva")

	_, err = uc.RecordSale(ctx, testCompanyID, testCajeroID, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: productA, Quantity: decimal.RequireFromString("1"), UnitPrice: decimal.RequireFromString("-1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "precio negativo")
}

// Vender exactamente el stock disponible deja saldo cero.
func TestRecordSale_AgotaElStock(t *testing.T) {
	store, uc := fixture(t)

	_, err := uc.RecordSale(context.Background(), testCompanyID, testCajeroID, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: productB, Quantity: decimal.RequireFromString("2"), UnitPrice: decimal.RequireFromString("4")},
		},
	})
	require.NoError(t, err)
	assert.True(t, stockOf(t, store, productB).IsZero())
}

func TestGetByID_VentaAjenaNoExiste(t *testing.T) {
	_, uc := fixture(t)

	_, err := uc.GetByID(context.Background(), testCompanyID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Timeout de la transacción
// ──────────────────────────────────────────────────────────────────────────────

// hangingSaleRunner simula un bloqueo de fila atascado: la transacción no
// avanza hasta que vence el contexto.
type hangingSaleRunner struct{}

func (hangingSaleRunner) RunSale(ctx context.Context, _ func(
	repository.ProductRepository,
	repository.StockHistoryRepository,
	repository.SaleRepository,
) error) error {
	<-ctx.Done()
	return ctx.Err()
}

// Un bloqueo atascado no cuelga la venta: el caso de uso corta por el plazo
// del mutador y devuelve domain.ErrUnavailable.
func TestRecordSale_BloqueoAtascadoDevuelveUnavailable(t *testing.T) {
	store, _ := fixture(t)
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	mutator := inventory.NewMutator(store, nil, log, 1, 50*time.Millisecond)
	uc := sales.NewUseCase(hangingSaleRunner{}, store.Sales(), mutator, log, 1)

	start := time.Now()
	_, err := uc.RecordSale(context.Background(), testCompanyID, testCajeroID, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: productA, Quantity: decimal.RequireFromString("1"), UnitPrice: decimal.RequireFromString("10")},
		},
	})
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second, "debe cortar por timeout, no colgar")
	assert.True(t, stockOf(t, store, productA).Equal(decimal.RequireFromString("10")),
		"el stock no debe tocarse")
}
