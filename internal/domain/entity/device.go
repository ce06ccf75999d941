package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de equipo HVAC.
const (
	DeviceSplit       = "split"
	DeviceMultiSplit  = "multi_split"
	DeviceVRF         = "vrf"
	DeviceHeatPump    = "heat_pump"
	DeviceBoiler      = "boiler"
	DeviceChiller     = "chiller"
	DeviceVentilation = "ventilation"
	DeviceOther       = "other"
)

// ValidDeviceKind informa si kind es un tipo de equipo conocido.
func ValidDeviceKind(kind string) bool {
	switch kind {
	case DeviceSplit, DeviceMultiSplit, DeviceVRF, DeviceHeatPump, DeviceBoiler,
		DeviceChiller, DeviceVentilation, DeviceOther:
		return true
	}
	return false
}

// Device representa un equipo instalado en un cliente.
type Device struct {
	ID            string
	CompanyID     string
	CustomerID    string
	Kind          string
	Brand         string
	Model         string
	SerialNumber  string
	Refrigerant   string // R32, R410A, R290...
	RefrigerantKg decimal.Decimal
	InstalledAt   *time.Time
	WarrantyUntil *time.Time
	LastServiceAt *time.Time
	NextServiceAt *time.Time
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ServiceIntervalMonths meses entre mantenimientos preventivos según el tipo de equipo.
// Bombas de calor, VRF y enfriadoras trabajan todo el año: revisión semestral.
func ServiceIntervalMonths(kind string) int {
	switch kind {
	case DeviceHeatPump, DeviceVRF, DeviceChiller:
		return 6
	default:
		return 12
	}
}

// ScheduleNextService recalcula NextServiceAt a partir del último servicio
// o, si no lo hay, de la fecha de instalación.
func (d *Device) ScheduleNextService() {
	base := d.LastServiceAt
	if base == nil {
		base = d.InstalledAt
	}
	if base == nil {
		d.NextServiceAt = nil
		return
	}
	next := base.AddDate(0, ServiceIntervalMonths(d.Kind), 0)
	d.NextServiceAt = &next
}

// RecordService registra un servicio realizado en at y reprograma el siguiente.
func (d *Device) RecordService(at time.Time) {
	d.LastServiceAt = &at
	d.ScheduleNextService()
}

// UnderWarranty informa si el equipo está en garantía en la fecha dada.
func (d *Device) UnderWarranty(at time.Time) bool {
	return d.WarrantyUntil != nil && !at.After(*d.WarrantyUntil)
}
