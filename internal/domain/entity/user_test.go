package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

func TestUser_AllRoles(t *testing.T) {
	u := &entity.User{Role: entity.RoleCoordinador, Roles: []string{entity.RoleTecnico, entity.RoleCoordinador, entity.RoleTecnico}}
	assert.Equal(t, []string{entity.RoleCoordinador, entity.RoleTecnico}, u.AllRoles())
}

func TestCustomer_FullAddress(t *testing.T) {
	c := &entity.Customer{Address: "Calle Mayor 5", PostalCode: "28013", City: "Madrid"}
	assert.Equal(t, "Calle Mayor 5, 28013, Madrid", c.FullAddress())
	assert.Equal(t, "Calle Mayor 5", (&entity.Customer{Address: "Calle Mayor 5"}).FullAddress())
}
