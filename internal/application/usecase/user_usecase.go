package usecase

import (
	"context"

	"github.com/jhoicas/climatiza-api/internal/application/auth"
	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// UserUseCase consulta de usuarios y gestión de roles adicionales.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

func (uc *UserUseCase) load(ctx context.Context, companyID, id string) (*entity.User, error) {
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// GetByID obtiene un usuario de la empresa.
func (uc *UserUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.UserResponse, error) {
	u, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return auth.ToUserResponse(u), nil
}

// List usuarios de la empresa con sus roles.
func (uc *UserUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) ([]dto.UserResponse, error) {
	page.DefaultPage()
	users, err := uc.repo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *auth.ToUserResponse(u))
	}
	return out, nil
}

// AssignRole añade un rol. Asignar el rol principal o uno ya asignado devuelve ErrDuplicate.
func (uc *UserUseCase) AssignRole(ctx context.Context, companyID, userID, role string) (*dto.UserResponse, error) {
	if !entity.ValidRole(role) {
		return nil, domain.ErrInvalidInput
	}
	u, err := uc.load(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if u.Role == role {
		return nil, domain.ErrDuplicate
	}
	if err := uc.repo.AssignRole(ctx, userID, role); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, companyID, userID)
}

// RevokeRole quita un rol adicional. El rol principal no se puede revocar.
func (uc *UserUseCase) RevokeRole(ctx context.Context, companyID, userID, role string) (*dto.UserResponse, error) {
	u, err := uc.load(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if u.Role == role {
		return nil, domain.ErrConflict
	}
	if err := uc.repo.RevokeRole(ctx, userID, role); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, companyID, userID)
}
