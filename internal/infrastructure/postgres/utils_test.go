package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inventario-componentes/internal/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{codeUniqueViolation, domain.ErrDuplicate},
		{codeForeignKeyViolation, domain.ErrNotFound},
		{codeInvalidText, domain.ErrInvalidInput},
		{codeDeadlockDetected, domain.ErrConflict},
		{codeSerializationFailure, domain.ErrConflict},
	}
	for _, tc := range cases {
		err := mapError("op", fmt.Errorf("wrap: %w", &pgconn.PgError{Code: tc.code}))
		assert.ErrorIs(t, err, tc.want, tc.code)
	}

	plain := errors.New("boom")
	assert.ErrorIs(t, mapError("op", plain), plain)
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "x", derefString(nullString("x")))
	assert.Equal(t, "", derefString(nil))
}
