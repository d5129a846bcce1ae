package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleForm struct {
	Pages  string `form:"pages" validate:"max=3"`
	Engine string `form:"engine" validate:"required"`
	Mode   string `form:"mode" validate:"omitempty,oneof=a b"`
}

func TestValidatorUsesFormNames(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.ValidateStruct(sampleForm{Pages: "1-3", Engine: "text"}))

	err := v.ValidateStruct(sampleForm{Pages: "1,2,3", Mode: "c"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{
		"pages":  "pages must be at most 3 characters",
		"engine": "engine is required",
		"mode":   "mode must be one of: a b",
	}, FormatValidationErrors(err))
	assert.Equal(t, "engine is required; mode must be one of: a b; pages must be at most 3 characters", Message(err))
}

func TestMessageFallsBackToError(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
