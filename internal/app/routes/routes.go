package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/campusshare/campusshare/internal/app/controllers"
	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	resourceController *controllers.ResourceController,
	downloadController *controllers.DownloadController,
	adminController *controllers.AdminController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh-token", authController.RefreshToken)
	}

	// --- Public catalog reads ---
	v1.GET("/resources", resourceController.List)
	v1.GET("/resources/:id", resourceController.Get)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth(), authMiddleware.NotBlocked())
	{
		authenticated.GET("/auth/me", authController.Me)

		resources := authenticated.Group("/resources")
		{
			resources.GET("/mine", resourceController.MyUploads)
			resources.GET("/feed", resourceController.Feed)

			// Uploads and deletes are limited to teachers and admins;
			// per-record ownership is enforced in the service.
			uploaders := resources.Group("")
			uploaders.Use(authMiddleware.RoleRequired(models.RoleTeacher, models.RoleAdmin))
			{
				uploaders.POST("", resourceController.Upload)
				uploaders.DELETE("/:id", resourceController.Delete)
			}
		}

		downloads := authenticated.Group("/downloads")
		{
			downloads.POST("", downloadController.Record)
			downloads.GET("", downloadController.History)
		}

		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			admin.GET("/users", adminController.ListUsers)
			admin.PUT("/users/:id/blocked", adminController.SetBlocked)
			admin.DELETE("/users/:id", adminController.DeleteUser)
			admin.GET("/stats", adminController.Stats)
		}
	}
}
