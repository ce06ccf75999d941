package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/application/usecase"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/testutil"
)

const (
	empresaPropia   = "00000000-0000-0000-0000-000000000002"
	empresaAjena    = "00000000-0000-0000-0000-0000000000bb"
	empresaOperador = "00000000-0000-0000-0000-0000000000ff"
)

// companyApp monta las rutas de empresas con la empresa del token fijada en Locals.
func companyApp(st *testutil.Store, tokenCompany string) *fiber.App {
	h := NewCompanyHandler(
		usecase.NewCompanyUseCase(testutil.CompanyRepo{Store: st}),
		usecase.NewModuleService(testutil.ModuleRepo{Store: st}, testutil.CompanyRepo{Store: st}),
		empresaOperador,
	)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalCompanyID, tokenCompany)
		return c.Next()
	})
	app.Get("/api/companies", h.List)
	app.Get("/api/companies/:id", h.GetByID)
	app.Put("/api/companies/:id", h.Update)
	app.Put("/api/companies/:id/modules", h.SetModule)
	return app
}

func companyStore() *testutil.Store {
	st := testutil.NewStore()
	for _, id := range []string{empresaPropia, empresaAjena, empresaOperador} {
		st.Companies[id] = &entity.Company{ID: id, Name: "Empresa " + id[len(id)-2:], Status: "active"}
	}
	return st
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCompanyHandler_NoTocaOtraEmpresa(t *testing.T) {
	st := companyStore()
	app := companyApp(st, empresaPropia)

	resp := doJSON(t, app, http.MethodPut, "/api/companies/"+empresaAjena+"/modules", `{"module":"crm","active":true}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, st.Modules)

	resp = doJSON(t, app, http.MethodPut, "/api/companies/"+empresaAjena, `{"name":"Secuestrada"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Empresa bb", st.Companies[empresaAjena].Name)

	resp = doJSON(t, app, http.MethodGet, "/api/companies/"+empresaAjena, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/companies", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCompanyHandler_PropiaYOperador(t *testing.T) {
	st := companyStore()

	resp := doJSON(t, companyApp(st, empresaPropia), http.MethodPut, "/api/companies/"+empresaPropia+"/modules", `{"module":"crm","active":true}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, companyApp(st, empresaPropia), http.MethodGet, "/api/companies/"+empresaPropia, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	operador := companyApp(st, empresaOperador)
	resp = doJSON(t, operador, http.MethodPut, "/api/companies/"+empresaAjena+"/modules", `{"module":"fleet","active":true}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, operador, http.MethodGet, "/api/companies", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, st.Modules, 2)
}

func TestCompanyHandler_EstadoSoloOperador(t *testing.T) {
	st := companyStore()

	resp := doJSON(t, companyApp(st, empresaPropia), http.MethodPut, "/api/companies/"+empresaPropia, `{"status":"inactive"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "active", st.Companies[empresaPropia].Status)

	resp = doJSON(t, companyApp(st, empresaOperador), http.MethodPut, "/api/companies/"+empresaPropia, `{"status":"suspended"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "suspended", st.Companies[empresaPropia].Status)
}
