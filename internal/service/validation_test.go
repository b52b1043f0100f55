package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/backoffice-api/internal/models"
)

func TestValidatorPasswordRule(t *testing.T) {
	v := NewValidator()

	req := models.SignUpRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "Password1"}
	assert.NoError(t, v.Struct(req))

	req.Password = "password1"
	fields := FieldErrors(v.Struct(req))
	assert.Contains(t, fields, "password")

	req.Password = "Password1"
	req.ConfirmPassword = "Password2"
	fields = FieldErrors(v.Struct(req))
	assert.Equal(t, "passwords do not match", fields["confirmPassword"])
}

func TestFieldErrorsUsesJSONNames(t *testing.T) {
	v := NewValidator()
	fields := FieldErrors(v.Struct(models.SignInRequest{Email: "nope"}))
	assert.Equal(t, "invalid email", fields["email"])
	assert.Equal(t, "password is required", fields["password"])
	assert.Nil(t, FieldErrors(nil))
}
