package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/order-allocation/internal/domain"
)

func TestValidationError_IsErrValidation(t *testing.T) {
	err := domain.NewValidationError("quantity", "debe ser un entero positivo")

	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.False(t, errors.Is(err, domain.ErrNoCapacity))
	assert.Equal(t, "quantity: debe ser un entero positivo", err.Error())

	wrapped := fmt.Errorf("allocate: %w", err)
	var ve *domain.ValidationError
	assert.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "quantity", ve.Field)
}

func TestStoreError_UnwrapsCause(t *testing.T) {
	err := domain.NewStoreError("find eligible", context.DeadlineExceeded)

	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "find eligible")
}
