package api

import (
	"net/http"

	"tengen/gateway/internal/gateway"
	"tengen/gateway/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Server wraps the REST API server
type Server struct {
	handler *Handler
	router  *gin.Engine
	hub     *websocket.Hub
}

// NewServer creates a new API server
func NewServer(db *gorm.DB, gw *gateway.Gateway, hub *websocket.Hub) *Server {
	handler := NewHandler(db, gw)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// WebSocket event stream
	router.GET("/ws", websocket.HandleWebSocket(hub))

	// API routes
	api := router.Group("/api/v1")
	{
		// Public auth endpoints (no authentication required)
		api.POST("/auth/login", handler.Login)

		// Requester endpoints (public; requester identity travels in the body)
		api.POST("/jobs", handler.SubmitJob)
		api.GET("/jobs/:id", handler.GetJob)
		api.GET("/jobs/:id/status", handler.GetJobStatus)
		api.GET("/jobs/:id/result", handler.GetJobResult)
		api.GET("/stats", handler.GetStats)
		api.GET("/events", handler.ListEvents)
		api.GET("/nodes/:address/authorized", handler.IsAuthorizedNode)

		// Compute node endpoints (registry membership is the authorization)
		api.GET("/jobs/pending", handler.ListPendingJobs)
		api.POST("/jobs/:id/result", handler.SubmitResult)
		api.POST("/jobs/:id/failure", handler.MarkJobFailed)

		// Protected admin endpoints (require authentication)
		protected := api.Group("")
		protected.Use(AuthMiddleware())
		{
			protected.GET("/auth/me", handler.GetCurrentUser)
			protected.GET("/jobs", handler.ListJobs)
			protected.GET("/nodes", handler.ListNodes)
			protected.POST("/nodes/:address/authorize", handler.AuthorizeNode)
			protected.POST("/nodes/:address/revoke", handler.RevokeNode)
			protected.PUT("/fees/min", handler.UpdateMinFee)
			protected.GET("/treasury", handler.GetTreasury)
			protected.POST("/treasury/withdraw", handler.WithdrawFees)
		}
	}

	return &Server{
		handler: handler,
		router:  router,
		hub:     hub,
	}
}

// GetHub returns the WebSocket event hub
func (s *Server) GetHub() *websocket.Hub {
	return s.hub
}

// GetRouter returns the router
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
