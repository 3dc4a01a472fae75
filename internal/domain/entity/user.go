package entity

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Роли пользователей
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// User представляет пользователя в системе
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex" json:"userId"` // непрозрачный идентификатор (uuid), отличный от ID
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      string    `gorm:"size:20;not null;default:'student'" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// IsAdmin проверяет, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CheckPassword проверяет, соответствует ли переданный пароль хешу
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// IsValidRole проверяет, что роль входит в перечисление
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStudent:
		return true
	default:
		return false
	}
}
