package repository

import (
	"context"

	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para empresas.
// Delete existe para la compensación del registro (empresa creada cuyo
// usuario administrador no pudo crearse).
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	Delete(ctx context.Context, id string) error
}
