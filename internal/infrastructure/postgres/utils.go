package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/climatiza-api/internal/domain"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único.
func isUniqueViolation(err error) bool {
	return pgCode(err) == pgerrcode.UniqueViolation
}

// mapWriteErr traduce errores de escritura a errores de dominio.
// unique → ErrDuplicate, FK → ErrNotFound, check → ErrInvalidInput.
func mapWriteErr(op string, err error) error {
	switch pgCode(err) {
	case pgerrcode.UniqueViolation:
		return domain.ErrDuplicate
	case pgerrcode.ForeignKeyViolation:
		return domain.ErrNotFound
	case pgerrcode.CheckViolation:
		return domain.ErrInvalidInput
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullIfEmpty convierte "" en NULL para columnas UUID opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// deref devuelve "" para punteros nil (lectura de columnas UUID opcionales).
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// isFKViolation verifica si un error es una violación de clave foránea.
func isFKViolation(err error) bool {
	return pgCode(err) == pgerrcode.ForeignKeyViolation
}
