package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ideanote/internal/container"
	"ideanote/internal/handlers"
	"ideanote/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(200, gin.H{
				"status":  "OK",
				"service": "ideanote-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.Signup(c.UserService))
		v1.POST("/login", handlers.Login(c.UserService, c.Config))
		v1.POST("/login/federated", handlers.FederatedLogin(c.UserService, c.Config))
		v1.GET("/logout", handlers.Logout())
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(c.Config.SessionSecret, c.Logger))

	ideaRoutes := protected.Group("/ideas")
	{
		ideaRoutes.POST("/", handlers.PostIdea(c.PostService))
		ideaRoutes.DELETE("/:id", handlers.RemovePost(c.PostService))
		ideaRoutes.POST("/:id/upvote", handlers.Upvote(c.PostService))
		ideaRoutes.POST("/:id/downvote", handlers.Downvote(c.PostService))
	}

	userRoutes := protected.Group("/users")
	{
		userRoutes.GET("/:username/profile", handlers.ViewProfile(c.UserService))
		userRoutes.GET("/:username/favorites", handlers.Favorites(c.PostService))
	}

	protected.POST("/favorites", handlers.Favorite(c.PostService))
	protected.POST("/follow", handlers.FollowUser(c.UserService))
	protected.POST("/search", handlers.SearchUsers(c.UserService))
	protected.GET("/discover", handlers.Discover(c.PostService))
	protected.GET("/notifications", handlers.Notifications(c.UserService))

	accountRoutes := protected.Group("/account")
	{
		accountRoutes.PATCH("/username", handlers.ChangeUsername(c.UserService))
		accountRoutes.PATCH("/password", handlers.ChangePassword(c.UserService))
		accountRoutes.PATCH("/theme", handlers.ChangeTheme(c.UserService))
		accountRoutes.PATCH("/image", handlers.ChangeProfilePic(c.UserService))
		accountRoutes.POST("/image/upload", handlers.UploadProfilePic(c.UserService, c.Cloudinary))
		accountRoutes.DELETE("/", handlers.DeleteAccount(c.UserService))
	}

	return r
}
