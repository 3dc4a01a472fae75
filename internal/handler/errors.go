package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
	"github.com/yourusername/testps-api/internal/service"
)

// respondError переводит ошибку сервиса в HTTP ответ {error, error_type}
func respondError(c *gin.Context, component string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		// Одинаковое сообщение для неизвестного email и неверного пароля
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials", "error_type": "invalid_credentials"})
	case errors.Is(err, service.ErrOTPNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No OTP found. Please request again.", "error_type": "otp_not_found"})
	case errors.Is(err, service.ErrOTPExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP expired. Please request a new one.", "error_type": "otp_expired"})
	case errors.Is(err, service.ErrOTPMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP", "error_type": "otp_mismatch"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "error_type": "forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrConfiguration):
		log.Printf("[%s] Ошибка конфигурации: %v", component, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "error_type": "configuration"})
	case errors.Is(err, apperrors.ErrDependency):
		log.Printf("[%s] Отказ внешней зависимости: %v", component, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upstream service failure", "error_type": "dependency"})
	default:
		log.Printf("[%s] Internal server error: %v", component, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal"})
	}
}

// respondBindError отвечает 400 на невалидное тело запроса
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data: " + err.Error(), "error_type": "validation"})
}
