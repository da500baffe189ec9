package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, 400, Validation("x").Status)
	assert.Equal(t, 401, Unauthenticated("x").Status)
	assert.Equal(t, 403, Forbidden("x").Status)
	assert.Equal(t, 404, NotFound("book").Status)
	assert.Equal(t, 409, Conflict("x").Status)
	assert.Equal(t, 500, Internal(errors.New("boom")).Status)
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "book not found", NotFound("book").Error())
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause)
	assert.NotContains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, err, cause)
}

func TestAsTraversesWrapping(t *testing.T) {
	inner := Conflict("book is already borrowed")
	wrapped := fmt.Errorf("borrow failed: %w", inner)

	ae := As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)

	assert.Nil(t, As(errors.New("plain")))
	assert.Nil(t, As(nil))
}
