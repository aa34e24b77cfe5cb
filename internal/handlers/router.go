package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/security"
	"github.com/rakitcita/platform-service/internal/services"
	"github.com/rakitcita/platform-service/internal/storage"
	"github.com/rakitcita/platform-service/internal/utils"
)

type HandlerManager struct {
	userHandler           *UserHandler
	courseHandler         *CourseHandler
	communityHandler      *CommunityHandler
	recommendationHandler *RecommendationHandler
	authMiddleware        *AuthMiddleware
	serviceManager        services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokenManager *security.TokenManager,
	uploader storage.Uploader,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		userHandler:           NewUserHandler(serviceManager.User(), uploader, logger),
		courseHandler:         NewCourseHandler(serviceManager.Course(), uploader, logger),
		communityHandler:      NewCommunityHandler(serviceManager.Community(), uploader, logger),
		recommendationHandler: NewRecommendationHandler(serviceManager.Recommendation(), logger),
		authMiddleware:        NewAuthMiddleware(tokenManager),
		serviceManager:        serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// User routes
		users := v1.Group("/users")
		{
			// Account creation and login are public
			users.POST("/register", hm.userHandler.Register)
			users.POST("/login", hm.userHandler.Login)

			profile := users.Group("")
			profile.Use(hm.authMiddleware.RequireAuth())
			{
				profile.GET("/profile", hm.userHandler.GetProfile)
				profile.PUT("/profile", hm.userHandler.UpdateProfile)
				profile.PATCH("/profile/picture", hm.userHandler.UploadProfilePicture)
				profile.GET("/courses", hm.courseHandler.ListMyCourses)
				profile.GET("/communities", hm.communityHandler.ListMyCommunities)
			}
		}

		// Course routes
		courses := v1.Group("/courses")
		{
			// Browsing is public
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)

			// Authoring - Mentors and Admins only
			courses.POST("", hm.authMiddleware.RequireAuth(), hm.authMiddleware.RequireRoleMiddleware(models.RoleMentor, models.RoleAdmin), hm.courseHandler.CreateCourse)
			courses.PUT("/:id", hm.authMiddleware.RequireAuth(), hm.authMiddleware.RequireRoleMiddleware(models.RoleMentor, models.RoleAdmin), hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", hm.authMiddleware.RequireAuth(), hm.authMiddleware.RequireRoleMiddleware(models.RoleMentor, models.RoleAdmin), hm.courseHandler.DeleteCourse)
			courses.PATCH("/:id/thumbnail", hm.authMiddleware.RequireAuth(), hm.authMiddleware.RequireRoleMiddleware(models.RoleMentor, models.RoleAdmin), hm.courseHandler.UploadThumbnail)

			// Enrollment - any authenticated user
			courses.POST("/:id/enroll", hm.authMiddleware.RequireAuth(), hm.courseHandler.Enroll)
			courses.PATCH("/:id/progress", hm.authMiddleware.RequireAuth(), hm.courseHandler.UpdateProgress)
		}

		// Community routes
		communities := v1.Group("/communities")
		{
			// Browsing is public
			communities.GET("", hm.communityHandler.ListCommunities)
			communities.GET("/:id", hm.communityHandler.GetCommunity)
			communities.GET("/:id/members", hm.communityHandler.ListMembers)

			// Everything else requires a session
			communities.POST("", hm.authMiddleware.RequireAuth(), hm.communityHandler.CreateCommunity)
			communities.PUT("/:id", hm.authMiddleware.RequireAuth(), hm.communityHandler.UpdateCommunity)
			communities.DELETE("/:id", hm.authMiddleware.RequireAuth(), hm.communityHandler.DeleteCommunity)
			communities.PATCH("/:id/banner", hm.authMiddleware.RequireAuth(), hm.communityHandler.UploadBanner)

			communities.POST("/:id/join", hm.authMiddleware.RequireAuth(), hm.communityHandler.Join)
			communities.POST("/:id/leave", hm.authMiddleware.RequireAuth(), hm.communityHandler.Leave)
			communities.PUT("/:id/members/:user_id/role", hm.authMiddleware.RequireAuth(), hm.communityHandler.UpdateMemberRole)
			communities.DELETE("/:id/members/:user_id", hm.authMiddleware.RequireAuth(), hm.communityHandler.RemoveMember)
		}

		// Recommendation routes
		recommendations := v1.Group("/recommendations")
		recommendations.Use(hm.authMiddleware.RequireAuth())
		{
			recommendations.POST("", hm.recommendationHandler.Recommend)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "platform-service",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "platform-service",
		})
	})
}
