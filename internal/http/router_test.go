package http

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidatorsAddsMonthRule(t *testing.T) {
	v := validator.New()
	require.NoError(t, registerValidators(v))

	assert.NoError(t, v.Var("2024-03", "yyyymm"))
	for _, month := range []string{"2024-13", "2024-3", "03-2024", ""} {
		assert.Error(t, v.Var(month, "yyyymm"), "month %q", month)
	}
}
