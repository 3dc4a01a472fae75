package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/testps-api/internal/domain/entity"
	"github.com/yourusername/testps-api/pkg/auth"
)

// Ключи контекста Gin, которые заполняет RequireAuth
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware создает новый middleware аутентификации
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// RequireAuth проверяет Bearer токен и кладет user_id и role в контекст
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errType, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": errType})
			return
		}

		claims, err := m.jwtService.ParseToken(token)
		if err != nil {
			errType := "token_invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				errType = "token_expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": errType})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// OptionalAuth заполняет контекст, если передан валидный токен, но не требует его
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _, ok := bearerToken(c.GetHeader("Authorization"))
		if ok {
			if claims, err := m.jwtService.ParseToken(token); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextRole, claims.Role)
			}
		}
		c.Next()
	}
}

// AdminOnly пропускает только пользователей с ролью admin. Должен применяться ПОСЛЕ RequireAuth.
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(ContextUserID)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "token_missing"})
			return
		}

		if !IsAdmin(c) {
			log.Printf("[AuthMiddleware] Отказ в доступе: пользователь %v не администратор (%s %s)", userID, c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin rights required", "error_type": "forbidden"})
			return
		}

		c.Next()
	}
}

// UserID возвращает ID аутентифицированного пользователя из контекста
func UserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// IsAdmin проверяет роль из контекста
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ContextRole) == entity.RoleAdmin
}

func bearerToken(header string) (token, errType string, ok bool) {
	if header == "" {
		return "", "token_missing", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "token_format", false
	}
	return parts[1], "", true
}
