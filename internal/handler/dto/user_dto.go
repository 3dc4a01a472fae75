package dto

import (
	"github.com/jinzhu/copier"

	"github.com/yourusername/testps-api/internal/domain/entity"
)

// SendOTPRequest - запрос на отправку одноразового кода
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest - проверка одноразового кода
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

// RegisterRequest - регистрация нового пользователя
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest - вход по email и паролю
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SetRoleRequest - смена роли пользователя
type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UserResponse - пользователь без хеша пароля
type UserResponse struct {
	ID     uint   `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// LoginResponse - токен и пользователь после входа
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// NewUserResponse конвертирует сущность пользователя в DTO
func NewUserResponse(user *entity.User) UserResponse {
	var resp UserResponse
	_ = copier.Copy(&resp, user)
	return resp
}

// NewUserListResponse конвертирует список пользователей
func NewUserListResponse(users []entity.User) []UserResponse {
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, NewUserResponse(&users[i]))
	}
	return resp
}
