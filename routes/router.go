package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nordblog/blogapi/config"
	"github.com/nordblog/blogapi/controllers"
	"github.com/nordblog/blogapi/engine"
	"github.com/nordblog/blogapi/middleware"
	"github.com/nordblog/blogapi/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(e *engine.Engine, logger *zap.Logger) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if logger != nil {
		r.Use(utils.RequestLogger(logger))
		r.Use(utils.Recovery(logger))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	// Uploaded images and bundled default media
	r.Static("/static/media", cfg.MediaDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(e)
	postController := controllers.NewPostController(e)
	commentController := controllers.NewCommentController(e)

	api := r.Group("/api/v1")

	authGroup := api.Group("")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/signup", authController.Signup)
	authGroup.POST("/login", authController.Login)

	// Public reads. Post detail accepts a token when one is present so
	// authors can preview their unpublished posts.
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", middleware.AuthOptional(), postController.GetPost)
	api.GET("/posts/:id/comments", commentController.ListComments)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)

	protected.POST("/posts/:id/comments", commentController.CreateComment)
	protected.PUT("/posts/:id/comments/:commentId", commentController.UpdateComment)
	protected.DELETE("/posts/:id/comments/:commentId", commentController.DeleteComment)

	protected.GET("/user", authController.Me)
	protected.GET("/user/posts", postController.ListMyPosts)
	protected.PUT("/user/basic", authController.UpdateBasicInfo)
	protected.PUT("/user/password", authController.UpdatePassword)
	protected.DELETE("/user", authController.DeleteAccount)
	protected.POST("/logout", authController.Logout)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
