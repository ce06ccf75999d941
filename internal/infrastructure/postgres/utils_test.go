package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/climatiza-api/internal/domain"
)

func TestMapWriteErr(t *testing.T) {
	assert.ErrorIs(t, mapWriteErr("x", &pgconn.PgError{Code: pgerrcode.UniqueViolation}), domain.ErrDuplicate)
	assert.ErrorIs(t, mapWriteErr("x", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}), domain.ErrNotFound)
	assert.ErrorIs(t, mapWriteErr("x", &pgconn.PgError{Code: pgerrcode.CheckViolation}), domain.ErrInvalidInput)

	boom := errors.New("boom")
	err := mapWriteErr("insert thing", boom)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "insert thing")
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "a", *nullIfEmpty("a"))
	assert.Equal(t, "", deref(nil))
}
