package repository

import (
	"context"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// CompanyRepository puerto de persistencia para Company.
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByTaxID(ctx context.Context, taxID string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)
}

// ModuleRepository puerto para la activación de módulos por empresa.
type ModuleRepository interface {
	// HasActiveModule true si el módulo está activo y no ha vencido.
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
	Upsert(ctx context.Context, m *entity.CompanyModule) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyModule, error)
}
