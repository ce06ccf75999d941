package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

func TestCustomerWhere_SoloEmpresa(t *testing.T) {
	where, args := customerWhere(entity.CustomerFilter{CompanyID: "c1"})
	assert.Equal(t, "company_id = $1", where)
	assert.Equal(t, []any{"c1"}, args)
}

func TestCustomerWhere_TodosLosCampos(t *testing.T) {
	where, args := customerWhere(entity.CustomerFilter{
		CompanyID: "c1", Search: "  garcía ", Type: entity.CustomerCommercial, City: "Valencia",
	})

	preds := strings.Split(where, " AND ")
	assert.Len(t, preds, 4, "un predicado por campo informado")
	assert.Len(t, args, 4, "un argumento por predicado")
	assert.Contains(t, preds[1], "name ILIKE $2")
	assert.Contains(t, preds[1], "tax_id ILIKE $2")
	assert.Equal(t, "type = $3", preds[2])
	assert.Equal(t, "lower(city) = lower($4)", preds[3])
	assert.Equal(t, []any{"c1", "%garcía%", entity.CustomerCommercial, "Valencia"}, args)
}

func TestCustomerWhere_IgnoraBlancos(t *testing.T) {
	where, args := customerWhere(entity.CustomerFilter{CompanyID: "c1", Search: "   ", City: " "})
	assert.Equal(t, "company_id = $1", where)
	assert.Len(t, args, 1)
}

func TestOrderWhere_FranjaDeCalendario(t *testing.T) {
	from := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	where, args := orderWhere(entity.ServiceOrderFilter{CompanyID: "c1", TechnicianID: "t1", To: &to, EndAfter: &from})

	assert.Equal(t, "company_id = $1 AND technician_id = $2 AND scheduled_start < $3 AND scheduled_end > $4", where)
	assert.Equal(t, []any{"c1", "t1", to, from}, args)
}
