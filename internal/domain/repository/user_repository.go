package repository

import (
	"context"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// UserRepository puerto de persistencia para User.
// Los métodos Get* cargan también los roles adicionales de user_roles.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error)

	// AssignRole devuelve domain.ErrDuplicate si el usuario ya tiene el rol.
	AssignRole(ctx context.Context, userID, role string) error
	// RevokeRole devuelve domain.ErrNotFound si el usuario no tenía el rol.
	RevokeRole(ctx context.Context, userID, role string) error
}
