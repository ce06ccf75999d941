package entity

import "time"

// Tipos de cliente.
const (
	CustomerResidential = "residential"
	CustomerCommercial  = "commercial"
)

// Customer representa un cliente de la empresa (particular o comercial).
type Customer struct {
	ID         string
	CompanyID  string
	Name       string
	TaxID      string // NIF/NIT; opcional para particulares
	Email      string
	Phone      string
	Type       string
	Address    string
	City       string
	PostalCode string
	Latitude   *float64
	Longitude  *float64
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullAddress concatena dirección, código postal y ciudad para geocodificar.
func (c *Customer) FullAddress() string {
	out := c.Address
	if c.PostalCode != "" {
		out += ", " + c.PostalCode
	}
	if c.City != "" {
		out += ", " + c.City
	}
	return out
}

// CustomerFilter criterios de búsqueda de clientes.
type CustomerFilter struct {
	CompanyID string
	Search    string
	Type      string
	City      string
	Limit     int
	Offset    int
}
