package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name      string
		passwords []string
		want      error
	}{
		{"valid", []string{"Test123!@#", "Password1$", "SecureP@ss1", "Admin123!"}, nil},
		{"too short", []string{"Test1!", "Pass1", "Abc12"}, ErrPasswordTooShort},
		{"no upper case", []string{"test123!@#", "password1$"}, ErrPasswordNoUpper},
		{"no lower case", []string{"TEST123!@#", "PASSWORD1$"}, ErrPasswordNoLower},
		{"no number", []string{"TestPass!@#", "Password$"}, ErrPasswordNoNumber},
		{"no special char", []string{"TestPass123", "Password1"}, ErrPasswordNoSpecialChar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, password := range tt.passwords {
				assert.Equal(t, tt.want, ValidatePasswordStrength(password), password)
			}
		})
	}
}
