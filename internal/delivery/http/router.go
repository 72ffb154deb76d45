package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/geomatch-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/geomatch-backend/internal/delivery/ws"
)

type Router struct {
	authHandler         *handler.AuthHandler
	profileHandler      *handler.ProfileHandler
	discoveryHandler    *handler.DiscoveryHandler
	connectionHandler   *handler.ConnectionHandler
	chatHandler         *handler.ChatHandler
	subscriptionHandler *handler.SubscriptionHandler
	wsHandler           *ws.Handler
	authMiddleware      *middleware.AuthMiddleware
	logger              *zap.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	discoveryHandler *handler.DiscoveryHandler,
	connectionHandler *handler.ConnectionHandler,
	chatHandler *handler.ChatHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	wsHandler *ws.Handler,
	authMiddleware *middleware.AuthMiddleware,
	logger *zap.Logger,
) *Router {
	return &Router{
		authHandler:         authHandler,
		profileHandler:      profileHandler,
		discoveryHandler:    discoveryHandler,
		connectionHandler:   connectionHandler,
		chatHandler:         chatHandler,
		subscriptionHandler: subscriptionHandler,
		wsHandler:           wsHandler,
		authMiddleware:      authMiddleware,
		logger:              logger,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(r.logger), gin.Recovery())

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", r.authHandler.Signup)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/logout", r.authMiddleware.RequireAuth(), r.authHandler.Logout)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			// Profile routes
			profile := protected.Group("/profile")
			{
				profile.GET("/me", r.profileHandler.GetMyProfile)
				profile.PUT("/me", r.profileHandler.UpdateMyProfile)
				profile.PUT("/me/location", r.profileHandler.UpdateMyLocation)
				profile.DELETE("/me", r.profileHandler.DeactivateMe)
				profile.GET("/:user_id", r.profileHandler.GetProfileByUserID)
			}

			protected.GET("/discover", r.discoveryHandler.Discover)

			// Connection routes
			connections := protected.Group("/connections")
			{
				connections.GET("", r.connectionHandler.ListFriends)
				connections.GET("/incoming", r.connectionHandler.ListIncoming)
				connections.POST("/:user_id", r.connectionHandler.SendRequest)
				connections.POST("/:user_id/accept", r.connectionHandler.AcceptRequest)
				connections.POST("/:user_id/reject", r.connectionHandler.RejectRequest)
				connections.DELETE("/:user_id", r.connectionHandler.RemoveFriend)
			}
			protected.POST("/skips/:user_id", r.connectionHandler.Skip)

			// Chat routes
			chat := protected.Group("/chat")
			{
				chat.GET("/online", r.chatHandler.Online)
				chat.GET("/ws", r.wsHandler.ServeWS)
				chat.POST("/:user_id/messages", r.chatHandler.SendMessage)
				chat.GET("/:user_id/messages", r.chatHandler.History)
			}

			// Subscription routes
			subscription := protected.Group("/subscription")
			{
				subscription.POST("", r.subscriptionHandler.Activate)
				subscription.GET("", r.subscriptionHandler.Status)
			}
		}
	}

	return router
}
