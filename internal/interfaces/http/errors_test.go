package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/domain"
)

func TestWriteError_Mapeo(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{errors.Join(domain.ErrInvalidInput, errors.New("el nombre es obligatorio")), 400, "VALIDATION"},
		{domain.ErrNotFound, 404, "NOT_FOUND"},
		{fmt.Errorf("reservar: %w", domain.ErrInsufficientStock), 409, "INSUFFICIENT_STOCK"},
		{domain.ErrInvalidTransition, 409, "INVALID_TRANSITION"},
		{domain.ErrLinkExpired, 410, "LINK_EXPIRED"},
		{domain.ErrLinkPassword, 401, "LINK_PASSWORD"},
		{domain.ErrUnavailable, 503, "UNAVAILABLE"},
		{errors.New("conexión rechazada"), 500, "INTERNAL"},
	}
	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return writeError(c, tc.err) })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, tc.status, resp.StatusCode, tc.code)
		assert.Contains(t, string(body), tc.code)
	}
}

func TestWriteError_MensajeSinSentinel(t *testing.T) {
	err := errors.Join(domain.ErrInvalidInput, errors.New("la matrícula es obligatoria"))
	assert.Equal(t, "la matrícula es obligatoria", errorMessage(err))
}

type checkerStub struct {
	active bool
	err    error
}

func (s checkerStub) HasActiveModule(context.Context, string, string) (bool, error) {
	return s.active, s.err
}

func TestRequireModule(t *testing.T) {
	run := func(checker moduleChecker, companyID string) int {
		app := fiber.New()
		app.Get("/",
			func(c *fiber.Ctx) error {
				c.Locals(LocalCompanyID, companyID)
				return c.Next()
			},
			RequireModule("fleet", checker, nil),
			func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
		)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, run(checkerStub{active: true}, "c1"))
	assert.Equal(t, http.StatusForbidden, run(checkerStub{active: false}, "c1"))
	assert.Equal(t, http.StatusServiceUnavailable, run(checkerStub{err: errors.New("db caída")}, "c1"))
	assert.Equal(t, http.StatusUnauthorized, run(checkerStub{active: true}, ""))
}

func TestQueryTime_Formatos(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		v, err := queryTime(c, "from", time.Time{})
		if err != nil {
			return writeError(c, err)
		}
		return c.SendString(v.Format(time.RFC3339))
	})

	for q, want := range map[string]string{
		"from=2026-03-01":           "2026-03-01T00:00:00Z",
		"from=2026-03-01T08:30:00Z": "2026-03-01T08:30:00Z",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?"+q, nil), -1)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, want, string(body))
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?from=ayer", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
