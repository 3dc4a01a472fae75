package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/testps-api/internal/handler/dto"
	"github.com/yourusername/testps-api/internal/service"
)

// AuthHandler обрабатывает запросы, связанные с аутентификацией
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SendOTP отправляет одноразовый код на email
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req dto.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authService.SendCode(c.Request.Context(), req.Email); err != nil {
		respondError(c, "AuthHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "OTP sent successfully"})
}

// VerifyOTP проверяет одноразовый код
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authService.VerifyCode(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondError(c, "AuthHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "OTP verified successfully"})
}

// Register регистрирует нового пользователя с ролью student
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	_, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, "AuthHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "User registered successfully"})
}

// Login выдает токен сессии по email и паролю
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, "AuthHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: result.Token,
		User:  dto.NewUserResponse(result.User),
	})
}
