package entity

import "time"

// Company representa una empresa instaladora/mantenedora (tenant del sistema).
type Company struct {
	ID        string
	Name      string
	TaxID     string
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Módulos SaaS disponibles (deben coincidir con el CHECK de la tabla company_modules).
const (
	ModuleCRM       = "crm"
	ModuleService   = "service"
	ModuleInventory = "inventory"
	ModuleFleet     = "fleet"
	ModuleCalendar  = "calendar"
	ModuleOffers    = "offers"
	ModuleBilling   = "billing"
	ModuleReports   = "reports"
	ModuleAI        = "ai"
)

// ValidModule informa si name es un módulo conocido.
func ValidModule(name string) bool {
	switch name {
	case ModuleCRM, ModuleService, ModuleInventory, ModuleFleet, ModuleCalendar,
		ModuleOffers, ModuleBilling, ModuleReports, ModuleAI:
		return true
	}
	return false
}

// CompanyModule representa la activación de un módulo en una empresa.
type CompanyModule struct {
	ID          string
	CompanyID   string
	ModuleName  string
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
