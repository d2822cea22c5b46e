package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMinLengthMessage(t *testing.T) {
	err := ValidateMinLength("abc", 6, "password")
	require.Error(t, err)
	assert.Equal(t, "password must be at least 6 characters long", err.Error())

	assert.NoError(t, ValidateMinLength("abcdef", 6, "password"))
}

func TestValidateMaxLengthCountsRunes(t *testing.T) {
	assert.NoError(t, ValidateMaxLength("ñandú", 5, "name"))
	assert.Error(t, ValidateMaxLength("ñandúes", 5, "name"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("new@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Ann <ann@example.com>"))
}

func TestValidateUUID(t *testing.T) {
	_, err := ValidateUUID("nope", "event_id")
	assert.EqualError(t, err, "event_id must be a valid UUID")

	id, err := ValidateUUID("7a1e5c2b-0d4f-4c61-9e3a-5b8f2d6c9a01", "event_id")
	require.NoError(t, err)
	assert.Equal(t, "7a1e5c2b-0d4f-4c61-9e3a-5b8f2d6c9a01", id.String())
}

type signupForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(signupForm{Email: "bad", Password: "123"})
	ve, ok := AsErrors(err)
	require.True(t, ok)

	assert.Equal(t, "email must have a valid format", ve["email"])
	assert.Equal(t, "password must be at least 6 characters long", ve["password"])
	assert.NoError(t, Struct(signupForm{Email: "a@example.com", Password: "secret1"}))
}

func TestErrorsCollect(t *testing.T) {
	ve := Errors{}
	assert.NoError(t, ve.Err())

	ve.Check("name", ValidateRequired("", "name"))
	ve.Check("name", errors.New("second"))
	ve.Check("email", nil)

	err := ve.Err()
	require.Error(t, err)
	assert.Equal(t, "name is required", ve["name"])
	assert.NotContains(t, ve, "email")

	wrapped := fmt.Errorf("signup: %w", err)
	got, ok := AsErrors(wrapped)
	require.True(t, ok)
	assert.Len(t, got, 1)
}

func TestMessageBody(t *testing.T) {
	v := MessageValidation{}
	assert.Error(t, v.ValidateBody("  ", false))
	assert.NoError(t, v.ValidateBody("", true))
	assert.NoError(t, v.ValidateBody("Congrats!", false))
}
