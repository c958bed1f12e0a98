package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/TiendaOps-api/internal/application/dto"
	"github.com/jhoicas/TiendaOps-api/internal/application/usecase"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/infrastructure/memory"
)

const (
	testCompanyID  = "00000000-0000-0000-0000-0000000000c1"
	otherCompanyID = "00000000-0000-0000-0000-0000000000c2"
)

func seedUser(t *testing.T, store *memory.Store, id, companyID, email, role string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, store.Users().Create(context.Background(), &entity.User{
		ID:        id,
		CompanyID: companyID,
		Email:     email,
		Name:      email,
		Role:      role,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func TestList_SoloUsuariosDeLaEmpresa(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", testCompanyID, "admin@acme.com", entity.RoleAdmin)
	seedUser(t, store, "u2", testCompanyID, "caja@acme.com", entity.RoleCajero)
	seedUser(t, store, "u3", otherCompanyID, "otro@ajena.com", entity.RoleAdmin)
	uc := usecase.NewUserUseCase(store.Users())

	users, err := uc.List(context.Background(), testCompanyID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Equal(t, testCompanyID, u.CompanyID)
	}
}

func TestDelete_EliminaUsuarioNoAdmin(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", testCompanyID, "admin@acme.com", entity.RoleAdmin)
	seedUser(t, store, "u2", testCompanyID, "caja@acme.com", entity.RoleCajero)
	uc := usecase.NewUserUseCase(store.Users())
	ctx := context.Background()

	require.NoError(t, uc.Delete(ctx, testCompanyID, "u2"))

	users, err := uc.List(ctx, testCompanyID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

// El último administrador activo de la empresa no puede eliminarse.
func TestDelete_ProtegeAlUltimoAdmin(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", testCompanyID, "admin@acme.com", entity.RoleAdmin)
	seedUser(t, store, "u2", testCompanyID, "caja@acme.com", entity.RoleCajero)
	uc := usecase.NewUserUseCase(store.Users())

	err := uc.Delete(context.Background(), testCompanyID, "u1")
	assert.ErrorIs(t, err, domain.ErrLastAdmin)
}

// Con dos admins activos sí se puede eliminar uno.
func TestDelete_AdminConReemplazo(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", testCompanyID, "admin@acme.com", entity.RoleAdmin)
	seedUser(t, store, "u2", testCompanyID, "admin2@acme.com", entity.RoleAdmin)
	uc := usecase.NewUserUseCase(store.Users())
	ctx := context.Background()

	require.NoError(t, uc.Delete(ctx, testCompanyID, "u1"))

	// El que queda ahora es el último: protegido.
	assert.ErrorIs(t, uc.Delete(ctx, testCompanyID, "u2"), domain.ErrLastAdmin)
}

// Un usuario de otra empresa es invisible: ni existe ni se elimina.
func TestDelete_UsuarioDeOtraEmpresa(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", testCompanyID, "admin@acme.com", entity.RoleAdmin)
	seedUser(t, store, "u3", otherCompanyID, "otro@ajena.com", entity.RoleAdmin)
	uc := usecase.NewUserUseCase(store.Users())

	err := uc.Delete(context.Background(), testCompanyID, "u3")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDelete_UsuarioInexistente(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewUserUseCase(store.Users())

	err := uc.Delete(context.Background(), testCompanyID, "nadie")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
