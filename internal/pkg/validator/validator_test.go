package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type createUser struct {
	Email string `json:"email" validate:"required,email,corporate_email"`
	Role  string `json:"role" validate:"required,role"`
}

func TestCorporateEmail(t *testing.T) {
	assert.True(t, IsCorporateEmail("Maria.Silva@CRESOL.com.br"))
	assert.True(t, IsCorporateEmail(" joao@cresol.com.br "))
	assert.False(t, IsCorporateEmail("joao@gmail.com"))
	assert.False(t, IsCorporateEmail("joao@cresol.com.br.evil.com"))
	assert.False(t, IsCorporateEmail(""))
}

func TestValidateMessages(t *testing.T) {
	errs := Validate(&createUser{Email: "joao@gmail.com", Role: "root"})

	assert.Contains(t, errs["email"], "e-mail corporativo")
	assert.Contains(t, errs["role"], "Invalid role")
}

func TestValidatePasses(t *testing.T) {
	assert.Nil(t, Validate(&createUser{Email: "joao@cresol.com.br", Role: "sector_admin"}))
}
