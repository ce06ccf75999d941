package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
	"github.com/jhoicas/climatiza-api/pkg/jwt"
)

// MinPasswordLength longitud mínima de contraseña.
const MinPasswordLength = 8

// ErrWeakPassword la contraseña no alcanza la longitud mínima.
var ErrWeakPassword = errors.New("la contraseña debe tener al menos 8 caracteres")

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	jwtCfg      JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, companyRepo: companyRepo, jwtCfg: jwtCfg}
}

// ValidatePassword aplica la política de contraseñas.
func ValidatePassword(pw string) error {
	if len([]rune(pw)) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// RegisterUser hashea la contraseña con bcrypt y persiste el usuario.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado y ErrForbidden si se pide
// un rol distinto de vendedor en una empresa que ya tiene usuarios.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}
	if in.Role != "" && !entity.ValidRole(in.Role) {
		return nil, domain.ErrInvalidInput
	}

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	company, err := uc.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	role, err := uc.registrationRole(ctx, in.CompanyID, in.Role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := in.Name
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    in.CompanyID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, err
	}
	return ToUserResponse(user), nil
}

// registrationRole rol con el que entra un registro público. El primer usuario de la empresa
// es su administrador; el resto entra como vendedor y los demás roles los asigna un admin.
func (uc *AuthUseCase) registrationRole(ctx context.Context, companyID, requested string) (string, error) {
	users, err := uc.userRepo.ListByCompany(ctx, companyID, 1, 0)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return entity.RoleAdmin, nil
	}
	if requested != "" && requested != entity.RoleVendedor {
		return "", errors.Join(domain.ErrForbidden, errors.New("el rol lo asigna un administrador"))
	}
	return entity.RoleVendedor, nil
}

// Login verifica email/password y emite un JWT con todos los roles del usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.CompanyID, user.AllRoles(), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *ToUserResponse(user)}, nil
}

// ToUserResponse convierte la entidad en DTO (sin hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Roles:     u.AllRoles(),
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
