// Package spreadsheet lee y escribe hojas .xlsx: importación de clientes y exportación de informes.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/pkg/textnorm"
)

// MaxImportBytes tamaño máximo de archivo aceptado.
const MaxImportBytes = 10 << 20

// ErrNoNameColumn la cabecera no contiene ninguna columna de nombre.
var ErrNoNameColumn = errors.New("la hoja no tiene columna de nombre")

// headerAliases cabeceras aceptadas por campo, ya normalizadas con textnorm.Key.
var headerAliases = map[string][]string{
	"name":        {"name", "nombre", "cliente", "razon social"},
	"tax_id":      {"tax id", "nif", "cif", "nit", "dni"},
	"email":       {"email", "e mail", "correo", "correo electronico"},
	"phone":       {"phone", "telefono", "movil", "tel"},
	"type":        {"type", "tipo"},
	"address":     {"address", "direccion", "domicilio"},
	"city":        {"city", "ciudad", "poblacion", "localidad"},
	"postal_code": {"postal code", "cp", "codigo postal"},
	"notes":       {"notes", "notas", "observaciones"},
}

func fieldForHeader(h string) string {
	key := textnorm.Key(h)
	for field, aliases := range headerAliases {
		for _, a := range aliases {
			if a == key {
				return field
			}
		}
	}
	return ""
}

// CustomerReader lee clientes de la primera hoja de un libro .xlsx.
type CustomerReader struct{}

// NewCustomerReader construye el lector.
func NewCustomerReader() *CustomerReader { return &CustomerReader{} }

// ReadCustomers devuelve una fila por cada fila no vacía tras la cabecera.
// No valida el contenido: eso lo hace el caso de uso para informar errores por fila.
func (CustomerReader) ReadCustomers(r io.Reader) ([]dto.CustomerImportRow, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("leer archivo: %w", err)
	}
	if len(data) > MaxImportBytes {
		return nil, fmt.Errorf("archivo mayor de %d bytes", MaxImportBytes)
	}
	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("abrir xlsx: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return nil, errors.New("el libro no tiene hojas")
	}
	sheet := wb.Sheets[0]
	if sheet.MaxRow == 0 {
		return nil, nil
	}

	header, err := sheet.Row(0)
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	columns := make(map[int]string)
	hasName := false
	for c := 0; c < sheet.MaxCol; c++ {
		field := fieldForHeader(header.GetCell(c).String())
		if field == "" {
			continue
		}
		columns[c] = field
		hasName = hasName || field == "name"
	}
	if !hasName {
		return nil, ErrNoNameColumn
	}

	var out []dto.CustomerImportRow
	for i := 1; i < sheet.MaxRow; i++ {
		row, err := sheet.Row(i)
		if err != nil {
			break
		}
		var in dto.CreateCustomerRequest
		empty := true
		for c, field := range columns {
			v := strings.TrimSpace(row.GetCell(c).String())
			if v == "" {
				continue
			}
			empty = false
			setField(&in, field, v)
		}
		if empty {
			continue
		}
		out = append(out, dto.CustomerImportRow{Row: i + 1, Customer: in})
	}
	return out, nil
}

func setField(in *dto.CreateCustomerRequest, field, v string) {
	switch field {
	case "name":
		in.Name = v
	case "tax_id":
		in.TaxID = strings.ToUpper(v)
	case "email":
		in.Email = strings.ToLower(v)
	case "phone":
		in.Phone = v
	case "type":
		switch textnorm.Normalize(v) {
		case "commercial", "comercial", "empresa":
			in.Type = "commercial"
		case "residential", "residencial", "particular":
			in.Type = "residential"
		default:
			in.Type = v
		}
	case "address":
		in.Address = v
	case "city":
		in.City = v
	case "postal_code":
		in.PostalCode = v
	case "notes":
		in.Notes = v
	}
}
