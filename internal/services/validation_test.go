package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecoscan/internal/apperr"
)

func TestIsImageRef(t *testing.T) {
	assert.True(t, isImageRef("https://example.com/a.png"))
	assert.True(t, isImageRef("http://localhost:9000/bucket/a.jpg"))
	assert.True(t, isImageRef("data:image/jpeg;base64,/9j/4AAQ"))
	assert.False(t, isImageRef("example.com/a.png"))
	assert.False(t, isImageRef("javascript:alert(1)"))
	assert.False(t, isImageRef("data:text/html;base64,PGgxPg=="))
}

func TestValidationErrorUsesJSONNames(t *testing.T) {
	type input struct {
		StartDate string `json:"start_date" validate:"required"`
		Kind      string `json:"kind" validate:"oneof=a b"`
	}
	err := validationError(newValidator().Struct(input{Kind: "c"}))

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, []apperr.FieldError{
		{Field: "start_date", Message: "start_date is required"},
		{Field: "kind", Message: "must be one of: a, b"},
	}, appErr.Fields)
}
