package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_PassesTypedErrors(t *testing.T) {
	err := fmt.Errorf("create unit: %w", BadRequestf("floor not found"))

	got := Normalize(err)
	require.NotNil(t, got)
	assert.Equal(t, BadRequest, got.Kind)
	assert.Equal(t, "floor not found", got.Message)
}

func TestNormalize_MasksUnknownErrors(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.3:3306: connection refused")

	got := Normalize(cause)
	assert.Equal(t, Internal, got.Kind)
	assert.Equal(t, InternalMessage, got.Message)
	assert.ErrorIs(t, got, cause)
}

func TestNormalize_MasksInternalMessage(t *testing.T) {
	got := Normalize(Internalf(sql.ErrConnDone, "insert customer"))
	assert.Equal(t, InternalMessage, got.Message)
	assert.ErrorIs(t, got, sql.ErrConnDone)
}

func TestNormalize_Nil(t *testing.T) {
	assert.Nil(t, Normalize(nil))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(NotFoundf("reservation %s not found", "x")))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.True(t, Is(New(Forbidden, "no"), Forbidden))
	assert.False(t, Is(nil, Internal))
}
