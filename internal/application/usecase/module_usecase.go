package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// ModuleService verifica y gestiona los módulos SaaS activos de una empresa.
// Es el único punto de la aplicación que conoce la lógica de activación de módulos.
type ModuleService struct {
	repo        repository.ModuleRepository
	companyRepo repository.CompanyRepository
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(repo repository.ModuleRepository, companyRepo repository.CompanyRepository) *ModuleService {
	return &ModuleService{repo: repo, companyRepo: companyRepo}
}

// HasActiveModule informa si la empresa tiene el módulo activo y sin vencer.
// Devuelve error solo ante fallos de infraestructura.
func (s *ModuleService) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	if companyID == "" || moduleName == "" {
		return false, fmt.Errorf("module: companyID y moduleName son obligatorios")
	}
	return s.repo.HasActiveModule(ctx, companyID, moduleName)
}

// SetModule activa o desactiva un módulo para la empresa.
func (s *ModuleService) SetModule(ctx context.Context, companyID string, in dto.ActivateModuleRequest) (*dto.ModuleResponse, error) {
	if !entity.ValidModule(in.Module) {
		return nil, domain.ErrInvalidInput
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	m := &entity.CompanyModule{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		ModuleName:  in.Module,
		IsActive:    in.Active,
		ActivatedAt: now,
		ExpiresAt:   in.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return toModuleResponse(m), nil
}

// List módulos configurados para la empresa.
func (s *ModuleService) List(ctx context.Context, companyID string) ([]dto.ModuleResponse, error) {
	mods, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ModuleResponse, 0, len(mods))
	for _, m := range mods {
		out = append(out, *toModuleResponse(m))
	}
	return out, nil
}

func toModuleResponse(m *entity.CompanyModule) *dto.ModuleResponse {
	return &dto.ModuleResponse{Module: m.ModuleName, Active: m.IsActive, ActivatedAt: m.ActivatedAt, ExpiresAt: m.ExpiresAt}
}
