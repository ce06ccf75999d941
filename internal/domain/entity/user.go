package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin       = "admin"
	RoleCoordinador = "coordinador" // agenda órdenes y asigna técnicos
	RoleTecnico     = "tecnico"
	RoleVendedor    = "vendedor"
)

// ValidRole informa si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCoordinador, RoleTecnico, RoleVendedor:
		return true
	}
	return false
}

// User representa un usuario del sistema (pertenece a una Company).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string
	Name         string
	Role         string   // rol principal
	Roles        []string // roles adicionales (tabla user_roles)
	Status       string   // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AllRoles devuelve el rol principal seguido de los adicionales, sin repetidos.
func (u *User) AllRoles() []string {
	out := []string{u.Role}
	seen := map[string]bool{u.Role: true}
	for _, r := range u.Roles {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}
