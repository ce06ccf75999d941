package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest entrada para crear un cliente.
type CreateCustomerRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	TaxID      string `json:"tax_id"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	Type       string `json:"type" validate:"omitempty,oneof=residential commercial"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Notes      string `json:"notes"`
}

// UpdateCustomerRequest entrada para actualizar un cliente (campos opcionales).
type UpdateCustomerRequest struct {
	Name       *string `json:"name"`
	TaxID      *string `json:"tax_id"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Type       *string `json:"type"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
	Notes      *string `json:"notes"`
}

// CustomerResponse salida de un cliente.
type CustomerResponse struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	Name       string    `json:"name"`
	TaxID      string    `json:"tax_id"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Type       string    `json:"type"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CustomerListResponse lista paginada de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ImportRowError error de una fila durante la importación.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult resumen de una importación de clientes.
type ImportResult struct {
	Total    int              `json:"total"`
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	DryRun   bool             `json:"dry_run"`
	Errors   []ImportRowError `json:"errors"`
}

// CustomerInsightDTO panel de resumen del cliente.
type CustomerInsightDTO struct {
	CustomerID     string     `json:"customer_id"`
	Devices        int        `json:"devices"`
	DevicesDue     int        `json:"devices_due"`
	OpenOrders     int        `json:"open_orders"`
	LastVisit      *time.Time `json:"last_visit,omitempty"`
	Summary        string     `json:"summary"`
	GeneratedByLLM bool       `json:"generated_by_llm"`
}

// DeviceRequest entrada para crear o actualizar un equipo.
type DeviceRequest struct {
	Kind          string          `json:"kind" validate:"required"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	SerialNumber  string          `json:"serial_number"`
	Refrigerant   string          `json:"refrigerant"`
	RefrigerantKg decimal.Decimal `json:"refrigerant_kg"`
	InstalledAt   *time.Time      `json:"installed_at,omitempty"`
	WarrantyUntil *time.Time      `json:"warranty_until,omitempty"`
	LastServiceAt *time.Time      `json:"last_service_at,omitempty"`
	Notes         string          `json:"notes"`
}

// DeviceResponse salida de un equipo.
type DeviceResponse struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	Kind          string          `json:"kind"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	SerialNumber  string          `json:"serial_number"`
	Refrigerant   string          `json:"refrigerant"`
	RefrigerantKg decimal.Decimal `json:"refrigerant_kg"`
	InstalledAt   *time.Time      `json:"installed_at,omitempty"`
	WarrantyUntil *time.Time      `json:"warranty_until,omitempty"`
	UnderWarranty bool            `json:"under_warranty"`
	LastServiceAt *time.Time      `json:"last_service_at,omitempty"`
	NextServiceAt *time.Time      `json:"next_service_at,omitempty"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CustomerImportRow fila leída de una hoja de importación (Row es 1-based, como en Excel).
type CustomerImportRow struct {
	Row      int
	Customer CreateCustomerRequest
}
