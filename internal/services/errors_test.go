package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsValidation(ErrValidation("x")))
	assert.False(t, IsValidation(ErrDependency("x")))
	assert.True(t, IsDependency(ErrDependency("x")))
	assert.False(t, IsDependency(assert.AnError))

	wrapped := fmt.Errorf("outer: %w", ErrValidation("inner"))
	assert.True(t, IsValidation(wrapped), "classification survives wrapping")

	assert.Nil(t, WrapError(nil, "noop"))
	assert.EqualError(t, WrapError(assert.AnError, "list posts"), "list posts: "+assert.AnError.Error())
}
