package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/infrastructure/memory"
)

// historial con 4 ajustes: el listado viene más reciente primero y los filtros
// de tipo y rango temporal acotan el resultado.
func TestGetStockHistory(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "0")
	m := newMutator(store)
	uc := inventory.NewStockHistoryUseCase(store.Products(), store.History())
	ctx := context.Background()

	for _, d := range []string{"10", "-4", "7", "-2"} {
		_, err := m.Apply(ctx, adjustInput(d))
		require.NoError(t, err)
	}

	entries, err := uc.GetStockHistory(ctx, testCompanyID, testProductID, dto.StockHistoryQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.True(t, entries[0].QuantityChange.String() == "-2", "más reciente primero")

	// Filtro por tipo: todos son adjustment, un tipo sin entradas devuelve vacío.
	byType, err := uc.GetStockHistory(ctx, testCompanyID, testProductID, dto.StockHistoryQuery{Type: entity.StockEventSale})
	require.NoError(t, err)
	assert.Empty(t, byType)

	// Paginación.
	page, err := uc.GetStockHistory(ctx, testCompanyID, testProductID, dto.StockHistoryQuery{
		PageRequest: dto.PageRequest{Limit: 2, Offset: 0},
	})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestGetStockHistory_Validaciones(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "10")
	uc := inventory.NewStockHistoryUseCase(store.Products(), store.History())
	ctx := context.Background()

	_, err := uc.GetStockHistory(ctx, testCompanyID, "inexistente", dto.StockHistoryQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.GetStockHistory(ctx, testCompanyID, testProductID, dto.StockHistoryQuery{Type: "teleport"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.GetStockHistory(ctx, testCompanyID, testProductID, dto.StockHistoryQuery{From: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "las fechas van en RFC3339")
}

// El rango temporal excluye entradas fuera de [from, to].
func TestGetStockHistory_FiltroTemporal(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "0")
	m := newMutator(store)
	uc := inventory.NewStockHistoryUseCase(store.Products(), store.History())
	ctx := context.Background()

	_, err := m.Apply(ctx, adjustInput("10"))
	require.NoError(t, err)

	// Una ventana completamente en el futuro no contiene la entrada.
	future := time.Now().Add(time.Hour).Format(time.RFC3339)
	entries, err := uc.GetStockHistory(ctx, testCompanyID, testProductID, dto.StockHistoryQuery{From: future})
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Una ventana que cubre el presente sí.
	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	entries, err = uc.GetStockHistory(ctx, testCompanyID, testProductID, dto.StockHistoryQuery{From: past})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// AdjustStock exige motivo antes de llegar al mutador.
func TestAdjustStock_MotivoObligatorio(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "10")
	m := newMutator(store)
	uc := inventory.NewAdjustStockUseCase(m)
	ctx := context.Background()

	_, err := uc.AdjustStock(ctx, testCompanyID, testActorID, dto.AdjustStockRequest{
		ProductID:      testProductID,
		QuantityChange: decimal.RequireFromString("3"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	resp, err := uc.AdjustStock(ctx, testCompanyID, testActorID, dto.AdjustStockRequest{
		ProductID:      testProductID,
		QuantityChange: decimal.RequireFromString("3"),
		Reason:         "merma por vencimiento",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StockEventAdjustment, resp.Type)
	assert.Equal(t, "merma por vencimiento", resp.Reason)
}
