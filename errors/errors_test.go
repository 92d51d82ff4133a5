package errors

import (
	// Go Internal Packages
	"errors"
	"testing"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Invalid, KindOf(E(Invalid, "bad input", nil)))
	assert.Equal(t, NotFound, KindOf(E(NotFound, "missing", nil)))
	assert.Equal(t, Other, KindOf(errors.New("plain")))
	assert.Equal(t, Other, KindOf(nil))
}

func TestKindOf_UnwrapsCause(t *testing.T) {
	inner := E(Unauthorized, "bad credentials", nil)
	outer := E(Internal, "auth check", inner)
	assert.Equal(t, Internal, KindOf(outer))
	assert.True(t, errors.Is(outer, inner))
}

func TestValidationErrors_CollectsAll(t *testing.T) {
	ve := ValidationErrs()
	require.NoError(t, ve.Err())

	ve.Add("companyCode", "cannot be empty")
	ve.Add("saleCode", "cannot be empty")

	err := ve.Err()
	require.Error(t, err)
	assert.Equal(t, Invalid, KindOf(err))
	assert.Contains(t, err.Error(), "companyCode")
	assert.Contains(t, err.Error(), "saleCode")
}
