package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
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
	testProductID = "00000000-0000-0000-0000-0000000000p1"
	testActorID   = "00000000-0000-0000-0000-0000000000u1"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

// seedProduct crea un producto con el saldo inicial indicado.
func seedProduct(t *testing.T, store *memory.Store, qty string) {
	t.Helper()
	now := time.Now()
	err := store.Products().Create(context.Background(), &entity.Product{
		ID:                testProductID,
		CompanyID:         testCompanyID,
		SKU:               "SKU-001",
		Name:              "Café molido 500g",
		BaseUnit:          "und",
		Price:             decimal.RequireFromString("12.50"),
		LowStockThreshold: decimal.RequireFromString("5"),
		StockQuantity:     decimal.RequireFromString(qty),
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	require.NoError(t, err)
}

func newMutator(store *memory.Store) *inventory.Mutator {
	return inventory.NewMutator(store, nil, testLogger(), 3, 5*time.Second)
}

func adjustInput(delta string) inventory.ApplyInput {
	return inventory.ApplyInput{
		CompanyID: testCompanyID,
		ProductID: testProductID,
		Delta:     decimal.RequireFromString(delta),
		Type:      entity.StockEventAdjustment,
		Reason:    "conteo físico",
		ActorID:   testActorID,
	}
}

// conflictingTxRunner envuelve al store y fuerza domain.ErrConflict en las
// primeras N ejecuciones, para ejercitar el reintento del mutador.
type conflictingTxRunner struct {
	store     *memory.Store
	mu        sync.Mutex
	failures  int
	execCount int
}

func (r *conflictingTxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	historyRepo repository.StockHistoryRepository,
) error) error {
	r.mu.Lock()
	r.execCount++
	fail := r.execCount <= r.failures
	r.mu.Unlock()
	if fail {
		return domain.ErrConflict
	}
	return r.store.Run(ctx, fn)
}

// recordingNotifier captura los eventos publicados (y opcionalmente falla).
type recordingNotifier struct {
	events chan inventory.StockChangeEvent
	err    error
}

func (n *recordingNotifier) PublishStockChange(_ context.Context, ev inventory.StockChangeEvent) error {
	if n.err != nil {
		return n.err
	}
	n.events <- ev
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Apply: camino feliz y validaciones
// ──────────────────────────────────────────────────────────────────────────────

// Un ajuste válido actualiza el saldo y deja una entrada en el ledger con
// quantity_after consistente.
func TestApply_AjusteActualizaSaldoYLedger(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "10")
	m := newMutator(store)

	entry, err := m.Apply(context.Background(), adjustInput("5"))
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.True(t, entry.QuantityChange.Equal(decimal.RequireFromString("5")))
	assert.True(t, entry.QuantityAfter.Equal(decimal.RequireFromString("15")),
		"quantity_after debe reflejar el saldo tras aplicar el delta")
	assert.Equal(t, entity.StockEventAdjustment, entry.Type)
	assert.Equal(t, testActorID, entry.CreatedBy)

	p, err := store.Products().GetByID(context.Background(), testCompanyID, testProductID)
	require.NoError(t, err)
	assert.True(t, p.StockQuantity.Equal(decimal.RequireFromString("15")))
	assert.Equal(t, int64(1), p.Version, "cada mutación incrementa la versión")
}

// Un delta que dejaría el saldo negativo se rechaza sin escribir nada.
func TestApply_RechazaSaldoNegativo(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "3")
	m := newMutator(store)

	_, err := m.Apply(context.Background(), adjustInput("-5"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Nada quedó aplicado: ni saldo ni ledger.
	p, err := store.Products().GetByID(context.Background(), testCompanyID, testProductID)
	require.NoError(t, err)
	assert.True(t, p.StockQuantity.Equal(decimal.RequireFromString("3")))
	assert.Equal(t, int64(0), p.Version)

	entries, err := store.History().ListByProduct(context.Background(), testCompanyID, testProductID, repository.StockHistoryFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, entries, "un rechazo no deja rastro en el ledger")
}

// Llevar el saldo exactamente a cero es válido.
func TestApply_SaldoCeroEsValido(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "4")
	m := newMutator(store)

	entry, err := m.Apply(context.Background(), adjustInput("-4"))
	require.NoError(t, err)
	assert.True(t, entry.QuantityAfter.IsZero())
}

func TestApply_ValidaEntrada(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "10")
	m := newMutator(store)
	ctx := context.Background()

	// Delta cero no es una mutación.
	in := adjustInput("1")
	in.Delta = decimal.Zero
	_, err := m.Apply(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Ajuste manual sin motivo.
	in = adjustInput("1")
	in.Reason = "   "
	_, err = m.Apply(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Tipo de evento desconocido.
	in = adjustInput("1")
	in.Type = "teleport"
	_, err = m.Apply(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Idempotente sin referencia no tiene clave de deduplicación.
	in = adjustInput("1")
	in.Idempotent = true
	_, err = m.Apply(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApply_ProductoInexistente(t *testing.T) {
	store := memory.NewStore()
	m := newMutator(store)

	_, err := m.Apply(context.Background(), adjustInput("5"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia derivada del ledger
// ──────────────────────────────────────────────────────────────────────────────

// Con Idempotent: la segunda aplicación de la misma (producto, referencia,
// tipo) devuelve ErrDuplicate y no acredita dos veces.
func TestApply_IdempotentePorReferencia(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "10")
	m := newMutator(store)
	ctx := context.Background()

	in := inventory.ApplyInput{
		CompanyID:   testCompanyID,
		ProductID:   testProductID,
		Delta:       decimal.RequireFromString("7"),
		Type:        entity.StockEventPOReceipt,
		ReferenceID: "po-123",
		ActorID:     testActorID,
		Idempotent:  true,
	}
	_, err := m.Apply(ctx, in)
	require.NoError(t, err)

	_, err = m.Apply(ctx, in)
	require.ErrorIs(t, err, domain.ErrDuplicate)

	p, err := store.Products().GetByID(ctx, testCompanyID, testProductID)
	require.NoError(t, err)
	assert.True(t, p.StockQuantity.Equal(decimal.RequireFromString("17")),
		"el crédito se aplica exactamente una vez")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintentos ante conflicto de versión
// ──────────────────────────────────────────────────────────────────────────────

// Dos conflictos seguidos se reintentan y el tercer intento confirma.
func TestApply_ReintentaAnteConflicto(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "10")
	runner := &conflictingTxRunner{store: store, failures: 2}
	m := inventory.NewMutator(runner, nil, testLogger(), 3, 5*time.Second)

	entry, err := m.Apply(context.Background(), adjustInput("5"))
	require.NoError(t, err)
	assert.True(t, entry.QuantityAfter.Equal(decimal.RequireFromString("15")))
	assert.Equal(t, 3, runner.execCount)
}

// Si todos los intentos chocan, el error final es ErrConflict.
func TestApply_AgotaReintentos(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "10")
	runner := &conflictingTxRunner{store: store, failures: 100}
	m := inventory.NewMutator(runner, nil, testLogger(), 3, 5*time.Second)

	_, err := m.Apply(context.Background(), adjustInput("5"))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, runner.execCount, "exactamente maxAttempts intentos")
}

// Un error que no es conflicto corta de inmediato, sin reintentos.
func TestRetryOnConflict_ErrorDistintoCorta(t *testing.T) {
	boom := errors.New("se cayó la base")
	calls := 0
	err := inventory.RetryOnConflict(context.Background(), 3, func() error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

// ──────────────────────────────────────────────────────────────────────────────
// Publicación de eventos
// ──────────────────────────────────────────────────────────────────────────────

// Tras confirmar se publica el evento con el saldo nuevo.
func TestApply_PublicaEventoDeCambio(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "10")
	notifier := &recordingNotifier{events: make(chan inventory.StockChangeEvent, 1)}
	m := inventory.NewMutator(store, notifier, testLogger(), 3, 5*time.Second)

	_, err := m.Apply(context.Background(), adjustInput("-2"))
	require.NoError(t, err)

	select {
	case ev := <-notifier.events:
		assert.Equal(t, testCompanyID, ev.CompanyID)
		assert.Equal(t, testProductID, ev.ProductID)
		assert.True(t, ev.NewQuantity.Equal(decimal.RequireFromString("8")))
		assert.Equal(t, entity.StockEventAdjustment, ev.EventType)
	case <-time.After(2 * time.Second):
		t.Fatal("el evento de cambio de stock nunca se publicó")
	}
}

// Un notifier que falla no afecta a la mutación (best-effort).
func TestApply_FalloDePublicacionNoAfecta(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "10")
	notifier := &recordingNotifier{err: errors.New("broker caído")}
	m := inventory.NewMutator(store, notifier, testLogger(), 3, 5*time.Second)

	entry, err := m.Apply(context.Background(), adjustInput("1"))
	require.NoError(t, err)
	assert.True(t, entry.QuantityAfter.Equal(decimal.RequireFromString("11")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y reconciliación del ledger
// ──────────────────────────────────────────────────────────────────────────────

// Mutaciones concurrentes sobre el mismo producto se serializan: el saldo final
// es la suma de los deltas y ninguna entrada se pierde.
func TestApply_ConcurrenteSerializa(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "10")
	m := newMutator(store)

	var wg sync.WaitGroup
	deltas := []string{"5", "-3", "2", "-1", "4"}
	for _, d := range deltas {
		wg.Add(1)
		go func(d string) {
			defer wg.Done()
			_, err := m.Apply(context.Background(), adjustInput(d))
			assert.NoError(t, err)
		}(d)
	}
	wg.Wait()

	p, err := store.Products().GetByID(context.Background(), testCompanyID, testProductID)
	require.NoError(t, err)
	assert.True(t, p.StockQuantity.Equal(decimal.RequireFromString("17")),
		"10 + 5 - 3 + 2 - 1 + 4 = 17")
	assert.Equal(t, int64(len(deltas)), p.Version)
}

// El saldo vigente se reconstruye sumando el ledger (suma prefija) y cada
// entrada encadena con la anterior vía quantity_after.
func TestLedger_ReconciliaConSaldo(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "0")
	m := newMutator(store)
	ctx := context.Background()

	for _, d := range []string{"10", "-4", "7", "-2"} {
		_, err := m.Apply(ctx, adjustInput(d))
		require.NoError(t, err)
	}

	p, err := store.Products().GetByID(ctx, testCompanyID, testProductID)
	require.NoError(t, err)

	sum, err := store.History().SumByProduct(ctx, testCompanyID, testProductID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(p.StockQuantity),
		"la suma del ledger debe coincidir con el saldo vigente")

	// Las entradas, en orden cronológico, encadenan quantity_after.
	entries, err := store.History().ListByProduct(ctx, testCompanyID, testProductID, repository.StockHistoryFilter{Limit: 100})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	running := decimal.Zero
	for i := len(entries) - 1; i >= 0; i-- { // ListByProduct devuelve más recientes primero
		running = running.Add(entries[i].QuantityChange)
		assert.True(t, entries[i].QuantityAfter.Equal(running),
			"quantity_after debe ser el acumulado en cada paso")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia bajo concurrencia (visibilidad READ COMMITTED)
// ──────────────────────────────────────────────────────────────────────────────

// rowLockedState modela la visibilidad por sentencia de READ COMMITTED: cada
// lectura ve el último estado confirmado y solo GetForUpdate bloquea (la fila
// del producto). ExistsByReference NO bloquea, igual que el SELECT real.
type rowLockedState struct {
	mu      sync.Mutex
	product entity.Product
	history []*entity.StockHistory
}

func (st *rowLockedState) exists(productID, referenceID, eventType string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, e := range st.history {
		if e.ProductID == productID && e.ReferenceID == referenceID && e.Type == eventType {
			return true
		}
	}
	return false
}

type rowLockedTx struct {
	st      *rowLockedState
	rowLock *sync.Mutex
	held    bool
}

type rlProductRepo struct {
	repository.ProductRepository
	tx *rowLockedTx
}

func (p *rlProductRepo) GetForUpdate(_ context.Context, _, _ string) (*entity.Product, error) {
	p.tx.rowLock.Lock()
	p.tx.held = true
	p.tx.st.mu.Lock()
	defer p.tx.st.mu.Unlock()
	cp := p.tx.st.product
	return &cp, nil
}

func (p *rlProductRepo) UpdateStockVersioned(_ context.Context, _ string, newQuantity decimal.Decimal, expectedVersion int64) error {
	st := p.tx.st
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.product.Version != expectedVersion {
		return domain.ErrConflict
	}
	st.product.StockQuantity = newQuantity
	st.product.Version++
	return nil
}

type rlHistoryRepo struct {
	repository.StockHistoryRepository
	tx *rowLockedTx
}

func (h *rlHistoryRepo) ExistsByReference(_ context.Context, productID, referenceID, eventType string) (bool, error) {
	return h.tx.st.exists(productID, referenceID, eventType), nil
}

func (h *rlHistoryRepo) Create(_ context.Context, entry *entity.StockHistory) error {
	st := h.tx.st
	st.mu.Lock()
	defer st.mu.Unlock()
	cp := *entry
	st.history = append(st.history, &cp)
	return nil
}

// rowLockedTxRunner arranca ambas transacciones a la vez (barrera) y suelta el
// bloqueo de fila al terminar cada una, como el commit real.
type rowLockedTxRunner struct {
	st      *rowLockedState
	rowLock sync.Mutex
	barrier *sync.WaitGroup
}

func (r *rowLockedTxRunner) Run(_ context.Context, fn func(
	productRepo repository.ProductRepository,
	historyRepo repository.StockHistoryRepository,
) error) error {
	if r.barrier != nil {
		r.barrier.Done()
		r.barrier.Wait()
	}
	tx := &rowLockedTx{st: r.st, rowLock: &r.rowLock}
	err := fn(&rlProductRepo{tx: tx}, &rlHistoryRepo{tx: tx})
	if tx.held {
		r.rowLock.Unlock()
	}
	return err
}

// Dos restocks concurrentes con la misma referencia arrancan a la vez y se
// serializan en el bloqueo de fila. El chequeo de duplicados corre bajo ese
// bloqueo, así que el segundo ve la entrada recién confirmada y devuelve
// domain.ErrDuplicate: el crédito se aplica exactamente una vez.
func TestApplyInTx_IdempotenciaBajoElBloqueoDeFila(t *testing.T) {
	st := &rowLockedState{product: entity.Product{
		ID:            testProductID,
		CompanyID:     testCompanyID,
		StockQuantity: decimal.RequireFromString("3"),
		Version:       1,
	}}
	var barrier sync.WaitGroup
	barrier.Add(2)
	runner := &rowLockedTxRunner{st: st, barrier: &barrier}
	m := inventory.NewMutator(runner, nil, testLogger(), 1, 5*time.Second)

	in := inventory.ApplyInput{
		CompanyID:   testCompanyID,
		ProductID:   testProductID,
		Delta:       decimal.RequireFromString("10"),
		Type:        entity.StockEventPOReceipt,
		ReferenceID: "po-0001",
		ActorID:     testActorID,
		Idempotent:  true,
	}

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := m.Apply(context.Background(), in)
			errs <- err
		}()
	}

	var applied, duplicated int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			applied++
		case errors.Is(err, domain.ErrDuplicate):
			duplicated++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, applied, "solo una transacción debe acreditar")
	assert.Equal(t, 1, duplicated, "la otra debe reportar duplicado")

	st.mu.Lock()
	defer st.mu.Unlock()
	assert.True(t, st.product.StockQuantity.Equal(decimal.RequireFromString("13")),
		"3 + 10 aplicado una sola vez")
	assert.Len(t, st.history, 1)
}
