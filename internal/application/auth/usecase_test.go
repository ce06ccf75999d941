package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/testutil"
	"github.com/jhoicas/climatiza-api/pkg/jwt"
)

func newAuth() (*testutil.Store, *AuthUseCase) {
	st := testutil.NewStore()
	st.Companies["c1"] = &entity.Company{ID: "c1", Name: "Climatiza"}
	uc := NewAuthUseCase(testutil.UserRepo{Store: st}, testutil.CompanyRepo{Store: st}, JWTConfig{Secret: "s3cr3t", ExpMinutes: 5, Issuer: "test"})
	return st, uc
}

func TestRegisterUser_PasswordCorta(t *testing.T) {
	_, uc := newAuth()
	_, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "a@b.es", Password: "1234567", CompanyID: "c1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	_, uc := newAuth()
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "Ana@Climatiza.es", Password: "12345678", CompanyID: "c1"})
	require.NoError(t, err)
	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ana@climatiza.es", Password: "12345678", CompanyID: "c1"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_TokenConRoles(t *testing.T) {
	st, uc := newAuth()
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "jefa@climatiza.es", Password: "12345678", CompanyID: "c1"})
	require.NoError(t, err)
	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "tec@climatiza.es", Password: "12345678", CompanyID: "c1"})
	require.NoError(t, err)
	require.NoError(t, testutil.UserRepo{Store: st}.AssignRole(ctx, u.ID, entity.RoleCoordinador))

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "tec@climatiza.es", Password: "12345678"})
	require.NoError(t, err)
	claims, err := jwt.Parse("s3cr3t", out.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleVendedor, claims.Role)
	assert.True(t, claims.HasRole(entity.RoleCoordinador))
	assert.Equal(t, "c1", claims.CompanyID)
}

func TestLogin_Errores(t *testing.T) {
	st, uc := newAuth()
	ctx := context.Background()
	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "x@climatiza.es", Password: "12345678", CompanyID: "c1"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "x@climatiza.es", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@climatiza.es", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	st.Users[u.ID].Status = "inactive"
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "x@climatiza.es", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRegisterUser_RolSoloParaElPrimerUsuario(t *testing.T) {
	st, uc := newAuth()
	ctx := context.Background()

	// El primer usuario de la empresa es su admin, pida lo que pida.
	first, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "alta@climatiza.es", Password: "12345678", CompanyID: "c1", Role: entity.RoleTecnico})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, first.Role)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "intruso@climatiza.es", Password: "12345678", CompanyID: "c1", Role: entity.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	second, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ventas@climatiza.es", Password: "12345678", CompanyID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleVendedor, second.Role)
	assert.Len(t, st.Users, 2)
}
