package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUser_CheckPassword_CorrectPassword(t *testing.T) {
	// Arrange: создаём пользователя и хешируем его пароль
	plainPassword := "correctPassword123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &User{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	// Act + Assert
	assert.True(t, user.CheckPassword(plainPassword), "Правильный пароль должен проходить проверку")
}

func TestUser_CheckPassword_WrongPassword(t *testing.T) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("correctPassword"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &User{Password: string(hashedPassword)}

	assert.False(t, user.CheckPassword("wrongPassword"), "Неправильный пароль не должен проходить проверку")
	assert.False(t, user.CheckPassword(""), "Пустой пароль не должен проходить проверку")
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleStudent}).IsAdmin())
	assert.False(t, (&User{}).IsAdmin(), "Пустая роль не даёт прав администратора")
}

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{RoleAdmin, true},
		{RoleStudent, true},
		{"", false},
		{"teacher", false},
		{"Admin", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidRole(tt.role))
		})
	}
}
