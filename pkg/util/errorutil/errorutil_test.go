package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThroughWrapped(t *testing.T) {
	orig := NewNotFound("message", map[string]any{"id": "42"})
	wrapped := fmt.Errorf("lookup: %w", orig)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	assert.Equal(t, "42", de.Details["id"])
}

func TestToDomainError_UnknownBecomesInternal(t *testing.T) {
	de := ToDomainError(errors.New("boom"))
	require.NotNil(t, de)
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, "internal server error", de.Message)
	assert.Nil(t, ToDomainError(nil))
}

func TestStorageUnavailable_HidesCauseFromMessage(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:5432: refused")
	err := NewStorageUnavailable(cause)

	de := ToDomainError(err)
	assert.Equal(t, "storage unavailable", de.Message)
	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeStorageUnavailable))
	assert.False(t, HasCode(err, CodeConflict))
}

func TestNewFieldError(t *testing.T) {
	de := ToDomainError(NewFieldError("text", "text is required"))
	assert.Equal(t, CodeValidation, de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "text", de.Details["field"])
}
