package repository

import (
	"context"

	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByEmailAndCompany(ctx context.Context, email, companyID string) (*entity.User, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error)
	Delete(ctx context.Context, id string) error
	// CountActiveAdmins cuenta los administradores activos de la empresa
	// (protección del último admin).
	CountActiveAdmins(ctx context.Context, companyID string) (int, error)
}
