package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpHandler "social-hub/interfaces/http"
	"social-hub/interfaces/middleware"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	healthHandler httpHandler.IHealthHandler,
	connectHandler httpHandler.IConnectHandler,
	publishHandler httpHandler.IPublishHandler,
	contentHandler httpHandler.IContentHandler,
	publishStream gin.HandlerFunc,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:4201", "https://localhost:4200", "https://localhost:4201"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)
	router.GET("/healthz", healthHandler.Healthz)

	// Browser-driven OAuth flow. Begin carries the bearer credential (the
	// settings UI opens it via fetch and follows the redirect manually),
	// the callback carries only the state cookie.
	connect := router.Group("connect")
	connect.Use(middleware.OptionalAuth())
	connect.GET("/:platform", connectHandler.Begin)
	connect.GET("/:platform/callback", connectHandler.Callback)

	api := router.Group("api")
	api.Use(middleware.Auth())

	api.POST("/disconnect/:platform", connectHandler.Disconnect)
	api.GET("/connections", connectHandler.Connections)
	api.POST("/publish/:contentId", publishHandler.Publish)
	api.DELETE("/content/:contentId", contentHandler.Delete)
	api.POST("/content/:contentId/like", contentHandler.Like)
	if publishStream != nil {
		api.GET("/publish/stream", publishStream)
	}

	return router
}
