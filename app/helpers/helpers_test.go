package helpers

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Method          string `json:"payment_method" validate:"omitempty,oneof=card paypal"`
}

func TestFormatValidationErrorsUsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Struct(signup{Email: "nope", Password: "short", PasswordConfirm: "other", Method: "cash"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	fields := FormatValidationErrors(verrs)
	assert.Equal(t, "Enter a valid email address.", fields["email"])
	assert.Equal(t, "Ensure this field has at least 8 characters.", fields["password"])
	assert.Equal(t, "Password fields didn't match.", fields["password_confirm"])
	assert.Contains(t, fields["payment_method"], "cash")
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), &Principal{ID: 7, IsStaff: true})
	p, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, uint64(7), p.ID)
	assert.True(t, p.IsStaff)
}
