package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/testps-api/internal/middleware"
)

// Routes - все обработчики и middleware, которые подключаются к роутеру
type Routes struct {
	Auth    *AuthHandler
	Users   *UserHandler
	Tests   *TestHandler
	Results *ResultHandler

	AuthMiddleware *middleware.AuthMiddleware
	// SendOTPLimit ограничивает /auth/send-otp; nil отключает лимит
	SendOTPLimit gin.HandlerFunc
}

// RegisterRoutes настраивает маршруты API
func RegisterRoutes(router *gin.Engine, r Routes) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMW := r.AuthMiddleware
	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		sendOTP := []gin.HandlerFunc{r.Auth.SendOTP}
		if r.SendOTPLimit != nil {
			sendOTP = append([]gin.HandlerFunc{r.SendOTPLimit}, sendOTP...)
		}
		authGroup.POST("/send-otp", sendOTP...)
		authGroup.POST("/verify-otp", r.Auth.VerifyOTP)
		authGroup.POST("/register", r.Auth.Register)
		authGroup.POST("/login", r.Auth.Login)

		adminUsers := authGroup.Group("/users", authMW.RequireAuth(), authMW.AdminOnly())
		{
			adminUsers.GET("", r.Users.ListUsers)
			adminUsers.PUT("/:id/role", middleware.ExtractUintParam("id", "userID"), r.Users.SetRole)
			adminUsers.DELETE("/:id", middleware.ExtractUintParam("id", "userID"), r.Users.DeleteUser)
		}
	}

	tests := api.Group("/tests")
	{
		tests.GET("", authMW.OptionalAuth(), r.Tests.List)
		tests.GET("/:id", middleware.ExtractUintParam("id", "testID"), authMW.OptionalAuth(), r.Tests.Get)

		adminTests := tests.Group("", authMW.RequireAuth(), authMW.AdminOnly())
		{
			adminTests.POST("/create", r.Tests.Create)
			adminTests.POST("/import", r.Tests.ImportPreview)
			adminTests.PUT("/:id", middleware.ExtractUintParam("id", "testID"), r.Tests.Update)
			adminTests.DELETE("/:id", middleware.ExtractUintParam("id", "testID"), r.Tests.Delete)
			adminTests.GET("/:id/results/export", middleware.ExtractUintParam("id", "testID"), r.Results.Export)
		}
	}

	results := api.Group("/results", authMW.RequireAuth())
	{
		results.POST("/submit", r.Results.Submit)
		results.GET("/user/:userId", middleware.ExtractUintParam("userId", "targetUserID"), r.Results.ListByUser)
		results.GET("/analytics/:userId", middleware.ExtractUintParam("userId", "targetUserID"), r.Results.UserAnalytics)

		adminResults := results.Group("", authMW.AdminOnly())
		{
			adminResults.GET("", r.Results.ListAll)
			adminResults.GET("/analytics", r.Results.PlatformAnalytics)
		}
	}
}
