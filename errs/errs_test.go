package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := NotFound("Poll not found with id %d", 7)
	assert.Equal(t, "Poll not found with id 7", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrBusiness)

	// The kind survives further wrapping.
	wrapped := fmt.Errorf("loading poll: %w", Business("Poll is already closed"))
	assert.ErrorIs(t, wrapped, ErrBusiness)
}

func TestPlainErrorsCarryNoKind(t *testing.T) {
	err := errors.New("connection refused")
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrBusiness)
	assert.NotErrorIs(t, err, ErrAuthorization)
	assert.NotErrorIs(t, err, ErrValidation)
}
