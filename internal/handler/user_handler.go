package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/testps-api/internal/handler/dto"
	"github.com/yourusername/testps-api/internal/service"
)

// UserHandler обрабатывает административные запросы по пользователям
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers возвращает всех пользователей без хешей паролей
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, "UserHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserListResponse(users))
}

// SetRole меняет роль пользователя. ID берется из ExtractUintParam.
func (h *UserHandler) SetRole(c *gin.Context) {
	id := c.GetUint("userID")

	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.SetRole(c.Request.Context(), id, req.Role)
	if err != nil {
		respondError(c, "UserHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Role updated", "user": dto.NewUserResponse(user)})
}

// DeleteUser удаляет пользователя
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.GetUint("userID")

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, "UserHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "User deleted"})
}
