package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs_MatchesByCode(t *testing.T) {
	assert.ErrorIs(t, Clone(ErrNotFound, "student not found"), ErrNotFound)
	assert.ErrorIs(t, Wrap(stderrors.New("boom"), ErrValidation.Code, "bad form"), ErrValidation)
	assert.NotErrorIs(t, Clone(ErrNotFound, ""), ErrForbidden)
}

func TestIs_SurvivesFurtherWrapping(t *testing.T) {
	inner := Clone(ErrCodeExpired, "")
	outer := fmt.Errorf("verify: %w", inner)
	assert.ErrorIs(t, outer, ErrCodeExpired)
}

func TestClone_OverridesMessageOnly(t *testing.T) {
	c := Clone(ErrForbidden, "only the principal can view ratings")
	assert.Equal(t, ErrForbidden.Code, c.Code)
	assert.Equal(t, "only the principal can view ratings", c.Message)

	same := Clone(ErrForbidden, "")
	assert.Equal(t, ErrForbidden.Message, same.Message)

	// The sentinel itself is never mutated.
	assert.Equal(t, "no permission", ErrForbidden.Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, ErrInternal.Code, "failed to persist")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to persist")
	assert.Contains(t, err.Error(), "disk full")
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := Clone(ErrConflict, "")
	assert.Same(t, typed, FromError(typed))

	wrapped := fmt.Errorf("outer: %w", Clone(ErrUnauthorized, ""))
	require.NotNil(t, FromError(wrapped))
	assert.Equal(t, ErrUnauthorized.Code, FromError(wrapped).Code)

	plain := FromError(stderrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.ErrorIs(t, plain, ErrInternal)
}
