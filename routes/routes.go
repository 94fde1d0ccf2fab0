package routes

import (
	"time"

	"forkful/handlers"
	"forkful/middleware"
	"forkful/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Setup builds the router over the handler set. The realtime channel lives at
// /ws; everything else sits under /api with the public auth endpoints outside
// the JWT group.
func Setup(h *handlers.Handler, hub *websocket.Hub, jwtSecret string) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
			"ws":     "WebSocket available at /ws",
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.RateLimit(60, time.Minute))

	// Public routes (no auth required)
	router.POST("/api/signup", h.Signup)
	router.POST("/api/login", h.Login)
	router.GET("/api/vapid-public-key", h.VapidPublicKey)
	router.GET("/api/posts", h.ListPosts)
	router.GET("/api/recipes", h.ListRecipes)

	// Realtime channel; authenticated via token query param.
	router.GET("/ws", func(c *gin.Context) {
		websocket.Handler(hub, func(token string) (string, error) {
			return middleware.ParseToken(jwtSecret, token)
		})(c.Writer, c.Request)
	})

	// Protected routes group
	protected := router.Group("/api")
	protected.Use(middleware.Auth(jwtSecret))

	protected.GET("/me", h.Me)

	protected.POST("/posts", h.CreatePost)
	protected.POST("/posts/:id/upvote", h.UpvotePost)
	protected.POST("/posts/:id/downvote", h.DownvotePost)
	protected.POST("/posts/:id/comment", h.AddComment)
	protected.DELETE("/posts/:id", h.DeletePost)

	protected.GET("/recipes/user", h.ListMyRecipes)
	protected.POST("/recipes", h.CreateRecipe)
	protected.DELETE("/recipes/:id", h.DeleteRecipe)

	protected.GET("/notifications", h.ListNotifications)
	protected.POST("/notifications", h.CreateNotification)

	protected.POST("/upload", h.UploadImage)
	protected.POST("/push/subscribe", h.SubscribePush)

	// Catch-all so unknown API paths return JSON instead of a blank 404.
	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
