package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapdog/heapdog/internal/domain"
)

func TestValidator_ReportsJSONFieldName(t *testing.T) {
	v := NewAppValidator()

	err := v.Validate(&domain.SigninRequest{Password: "secret"})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "username", validationErr.Field, "wire name, not the Go field name")
	assert.Equal(t, "is required", validationErr.Message)
}

func TestValidator_EmailRuleMessage(t *testing.T) {
	v := NewAppValidator()

	err := v.Validate(&domain.SignupRequest{
		Username: "mina",
		Email:    "not-an-address",
		Password: "secret",
	})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "email", validationErr.Field)
	assert.Equal(t, "must be a valid email address", validationErr.Message)
}

func TestValidator_PassesValidStruct(t *testing.T) {
	v := NewAppValidator()

	assert.NoError(t, v.Validate(&domain.SigninRequest{
		Username: "mina",
		Password: "secret",
	}))
}
