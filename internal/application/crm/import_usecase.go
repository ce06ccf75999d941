package crm

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
)

// CustomerSheetReader lee filas de clientes de una hoja de cálculo.
type CustomerSheetReader interface {
	ReadCustomers(r io.Reader) ([]dto.CustomerImportRow, error)
}

// ImportUseCase importación masiva de clientes desde .xlsx.
type ImportUseCase struct {
	reader    CustomerSheetReader
	customers *CustomerUseCase
}

// NewImportUseCase construye el caso de uso.
func NewImportUseCase(reader CustomerSheetReader, customers *CustomerUseCase) *ImportUseCase {
	return &ImportUseCase{reader: reader, customers: customers}
}

// Import valida cada fila y, salvo en dry-run, crea los clientes válidos.
// Las filas con error no detienen la importación: se informan en Errors.
// Un CIF repetido dentro del mismo archivo cuenta como duplicado.
func (uc *ImportUseCase) Import(ctx context.Context, companyID string, r io.Reader, dryRun bool) (*dto.ImportResult, error) {
	rows, err := uc.reader.ReadCustomers(r)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}
	res := &dto.ImportResult{Total: len(rows), DryRun: dryRun, Errors: []dto.ImportRowError{}}
	seen := make(map[string]int)

	for _, row := range rows {
		in := row.Customer
		if err := validateCustomer(&in); err != nil {
			res.Errors = append(res.Errors, dto.ImportRowError{Row: row.Row, Message: err.Error()})
			continue
		}
		if in.TaxID != "" {
			if first, dup := seen[in.TaxID]; dup {
				res.Errors = append(res.Errors, dto.ImportRowError{Row: row.Row, Message: "CIF/NIF repetido en la fila " + strconv.Itoa(first)})
				continue
			}
			seen[in.TaxID] = row.Row
			existing, err := uc.customers.repo.GetByCompanyAndTaxID(ctx, companyID, in.TaxID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				res.Skipped++
				continue
			}
		}
		if dryRun {
			res.Imported++
			continue
		}
		if _, err := uc.customers.Create(ctx, companyID, in); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, dto.ImportRowError{Row: row.Row, Message: err.Error()})
			continue
		}
		res.Imported++
	}
	return res, nil
}
