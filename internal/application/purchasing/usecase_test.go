package purchasing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
	"github.com/jhoicas/TiendaOps-api/internal/application/purchasing"
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
	testCompanyID  = "00000000-0000-0000-0000-0000000000c1"
	testActorID    = "00000000-0000-0000-0000-0000000000u1"
	testSupplierID = "00000000-0000-0000-0000-0000000000s1"
	productA       = "00000000-0000-0000-0000-0000000000a1"
	productB       = "00000000-0000-0000-0000-0000000000b1"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

// fixture arma un store con dos productos y el caso de uso listo.
func fixture(t *testing.T) (*memory.Store, *purchasing.UseCase) {
	t.Helper()
	store := memory.NewStore()
	now := time.Now()
	for i, id := range []string{productA, productB} {
		err := store.Products().Create(context.Background(), &entity.Product{
			ID:            id,
			CompanyID:     testCompanyID,
			SKU:           "SKU-00" + string(rune('1'+i)),
			Name:          "Producto " + string(rune('A'+i)),
			BaseUnit:      "und",
			Price:         decimal.RequireFromString("10"),
			StockQuantity: decimal.RequireFromString("3"),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		require.NoError(t, err)
	}
	log := testLogger()
	mutator := inventory.NewMutator(store, nil, log, 3, 5*time.Second)
	uc := purchasing.NewUseCase(store, store.PurchaseOrders(), store.Products(), mutator, log, 3)
	return store, uc
}

// createOrder crea una orden draft con las dos líneas estándar (10 de A, 4 de B).
func createOrder(t *testing.T, uc *purchasing.UseCase) *entity.PurchaseOrder {
	t.Helper()
	po, err := uc.Create(context.Background(), testCompanyID, testActorID, dto.CreatePurchaseOrderRequest{
		SupplierID: testSupplierID,
		Items: []dto.PurchaseOrderItemRequest{
			{ProductID: productA, Quantity: decimal.RequireFromString("10"), UnitCost: decimal.RequireFromString("4.20")},
			{ProductID: productB, Quantity: decimal.RequireFromString("4"), UnitCost: decimal.RequireFromString("1.00")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, entity.POStatusDraft, po.Status)
	return po
}

func receiveAll(t *testing.T, uc *purchasing.UseCase, poID string) {
	t.Helper()
	err := uc.Receive(context.Background(), testCompanyID, poID, dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceivedItemRequest{
			{ProductID: productA, QuantityReceived: decimal.RequireFromString("10")},
			{ProductID: productB, QuantityReceived: decimal.RequireFromString("4")},
		},
	})
	require.NoError(t, err)
}

func stockOf(t *testing.T, store *memory.Store, productID string) decimal.Decimal {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), testCompanyID, productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockQuantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación y validaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ValidaLineas(t *testing.T) {
	_, uc := fixture(t)
	ctx := context.Background()

	// Sin proveedor.
	_, err := uc.Create(ctx, testCompanyID, testActorID, dto.CreatePurchaseOrderRequest{
		Items: []dto.PurchaseOrderItemRequest{{ProductID: productA, Quantity: decimal.RequireFromString("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Cantidad no positiva.
	_, err = uc.Create(ctx, testCompanyID, testActorID, dto.CreatePurchaseOrderRequest{
		SupplierID: testSupplierID,
		Items:      []dto.PurchaseOrderItemRequest{{ProductID: productA, Quantity: decimal.Zero}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Producto duplicado en dos líneas.
	_, err = uc.Create(ctx, testCompanyID, testActorID, dto.CreatePurchaseOrderRequest{
		SupplierID: testSupplierID,
		Items: []dto.PurchaseOrderItemRequest{
			{ProductID: productA, Quantity: decimal.RequireFromString("1")},
			{ProductID: productA, Quantity: decimal.RequireFromString("2")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Producto de otra empresa (inexistente para esta).
	_, err = uc.Create(ctx, testCompanyID, testActorID, dto.CreatePurchaseOrderRequest{
		SupplierID: testSupplierID,
		Items:      []dto.PurchaseOrderItemRequest{{ProductID: "ajeno", Quantity: decimal.RequireFromString("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida: draft → ordered → received → completed
// ──────────────────────────────────────────────────────────────────────────────

func TestLifecycle_AvanceCompleto(t *testing.T) {
	store, uc := fixture(t)
	ctx := context.Background()
	po := createOrder(t, uc)

	require.NoError(t, uc.MarkOrdered(ctx, testCompanyID, po.ID))
	receiveAll(t, uc, po.ID)

	got, err := uc.GetByID(ctx, testCompanyID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusReceived, got.Status)

	result, err := uc.Restock(ctx, testCompanyID, testActorID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusCompleted, result.Status)
	assert.ElementsMatch(t, []string{productA, productB}, result.Applied)
	assert.Empty(t, result.Pending)

	// 3 + 10 y 3 + 4.
	assert.True(t, stockOf(t, store, productA).Equal(decimal.RequireFromString("13")))
	assert.True(t, stockOf(t, store, productB).Equal(decimal.RequireFromString("7")))
}

// Los saltos y retrocesos de estado se rechazan.
func TestLifecycle_TransicionesInvalidas(t *testing.T) {
	_, uc := fixture(t)
	ctx := context.Background()
	po := createOrder(t, uc)

	// draft no puede recibirse sin pasar por ordered.
	err := uc.Receive(ctx, testCompanyID, po.ID, dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceivedItemRequest{{ProductID: productA, QuantityReceived: decimal.RequireFromString("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, uc.MarkOrdered(ctx, testCompanyID, po.ID))

	// ordered → ordered tampoco.
	assert.ErrorIs(t, uc.MarkOrdered(ctx, testCompanyID, po.ID), domain.ErrInvalidTransition)

	// Un restock sobre draft de otra orden se rechaza.
	po2 := createOrder(t, uc)
	_, err = uc.Restock(ctx, testCompanyID, testActorID, po2.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// La recepción no puede exceder lo pedido ni referir líneas ajenas.
func TestReceive_ValidaCantidades(t *testing.T) {
	_, uc := fixture(t)
	ctx := context.Background()
	po := createOrder(t, uc)
	require.NoError(t, uc.MarkOrdered(ctx, testCompanyID, po.ID))

	err := uc.Receive(ctx, testCompanyID, po.ID, dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceivedItemRequest{{ProductID: productA, QuantityReceived: decimal.RequireFromString("11")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "recibir más de lo pedido es inválido")

	err = uc.Receive(ctx, testCompanyID, po.ID, dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceivedItemRequest{{ProductID: "otro", QuantityReceived: decimal.RequireFromString("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Restock: recepción parcial e idempotencia
// ──────────────────────────────────────────────────────────────────────────────

// Solo las líneas con cantidad recibida acreditan stock.
func TestRestock_RecepcionParcial(t *testing.T) {
	store, uc := fixture(t)
	ctx := context.Background()
	po := createOrder(t, uc)
	require.NoError(t, uc.MarkOrdered(ctx, testCompanyID, po.ID))

	err := uc.Receive(ctx, testCompanyID, po.ID, dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceivedItemRequest{{ProductID: productA, QuantityReceived: decimal.RequireFromString("6")}},
	})
	require.NoError(t, err)

	result, err := uc.Restock(ctx, testCompanyID, testActorID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{productA}, result.Applied)
	assert.True(t, stockOf(t, store, productA).Equal(decimal.RequireFromString("9")), "3 + 6 recibidos")
	assert.True(t, stockOf(t, store, productB).Equal(decimal.RequireFromString("3")), "la línea sin recepción no acredita")
}

// Re-invocar restock no duplica crédito: las líneas ya acreditadas se reportan
// en already_applied.
func TestRestock_Idempotente(t *testing.T) {
	store, uc := fixture(t)
	ctx := context.Background()
	po := createOrder(t, uc)
	require.NoError(t, uc.MarkOrdered(ctx, testCompanyID, po.ID))
	receiveAll(t, uc, po.ID)

	first, err := uc.Restock(ctx, testCompanyID, testActorID, po.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{productA, productB}, first.Applied)

	// La orden quedó completed; un segundo restock ni siquiera es transición válida.
	_, err = uc.Restock(ctx, testCompanyID, testActorID, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.True(t, stockOf(t, store, productA).Equal(decimal.RequireFromString("13")),
		"ningún crédito se aplicó dos veces")
}

// El ledger ya tiene una entrada por la orden: el crédito de esa línea se
// omite como already_applied aunque el restock se reintente desde received.
func TestRestock_DeduplicaPorLedger(t *testing.T) {
	store, uc := fixture(t)
	ctx := context.Background()
	po := createOrder(t, uc)
	require.NoError(t, uc.MarkOrdered(ctx, testCompanyID, po.ID))
	receiveAll(t, uc, po.ID)

	// Simula una invocación previa que acreditó solo la línea A antes de caerse.
	log := testLogger()
	mutator := inventory.NewMutator(store, nil, log, 3, 5*time.Second)
	_, err := mutator.Apply(ctx, inventory.ApplyInput{
		CompanyID:   testCompanyID,
		ProductID:   productA,
		Delta:       decimal.RequireFromString("10"),
		Type:        entity.StockEventPOReceipt,
		ReferenceID: po.ID,
		ActorID:     testActorID,
		Idempotent:  true,
	})
	require.NoError(t, err)

	result, err := uc.Restock(ctx, testCompanyID, testActorID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{productA}, result.AlreadyApplied)
	assert.Equal(t, []string{productB}, result.Applied)
	assert.Equal(t, entity.POStatusCompleted, result.Status)

	assert.True(t, stockOf(t, store, productA).Equal(decimal.RequireFromString("13")))
	assert.True(t, stockOf(t, store, productB).Equal(decimal.RequireFromString("7")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorEstado(t *testing.T) {
	_, uc := fixture(t)
	ctx := context.Background()
	po1 := createOrder(t, uc)
	createOrder(t, uc)
	require.NoError(t, uc.MarkOrdered(ctx, testCompanyID, po1.ID))

	drafts, err := uc.List(ctx, testCompanyID, entity.POStatusDraft, 20, 0)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)

	all, err := uc.List(ctx, testCompanyID, "", 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = uc.List(ctx, testCompanyID, "inventado", 20, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Timeout por línea en el restock
// ──────────────────────────────────────────────────────────────────────────────

// hangingPurchaseRunner simula un bloqueo de fila atascado: la transacción de
// cada línea no avanza hasta que vence su plazo.
type hangingPurchaseRunner struct{}

func (hangingPurchaseRunner) RunPurchase(ctx context.Context, _ func(
	repository.ProductRepository,
	repository.StockHistoryRepository,
	repository.PurchaseOrderRepository,
) error) error {
	<-ctx.Done()
	return ctx.Err()
}

// Una fila bloqueada no cuelga el restock: cada línea corta por su propio
// plazo, queda en Pending como no disponible y la orden no avanza de estado.
func TestRestock_BloqueoAtascadoDejaLineasPendientes(t *testing.T) {
	store, uc := fixture(t)
	ctx := context.Background()
	po := createOrder(t, uc)
	require.NoError(t, uc.MarkOrdered(ctx, testCompanyID, po.ID))
	receiveAll(t, uc, po.ID)

	log := testLogger()
	mutator := inventory.NewMutator(store, nil, log, 1, 50*time.Millisecond)
	hungUC := purchasing.NewUseCase(hangingPurchaseRunner{}, store.PurchaseOrders(), store.Products(), mutator, log, 1)

	start := time.Now()
	result, err := hungUC.Restock(ctx, testCompanyID, testActorID, po.ID)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second, "debe cortar por timeout, no colgar")

	assert.Empty(t, result.Applied)
	require.Len(t, result.Pending, 2)
	for _, p := range result.Pending {
		assert.Contains(t, p.Error, domain.ErrUnavailable.Error())
	}
	assert.Equal(t, entity.POStatusReceived, result.Status, "la orden no debe avanzar")
	assert.True(t, stockOf(t, store, productA).Equal(decimal.RequireFromString("3")),
		"sin crédito de stock")
}
