package web

import (
	"github.com/Rodhackgang/KaboreTech-sub000/internal/config"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	config *config.Config
	log    *zap.Logger
}

func NewServer(cfg *config.Config, userService service.UserService, videoService service.VideoService, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handlers := NewHandlers(userService, videoService, log)

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.POST("/register", handlers.Register)

	api := router.Group("/api")
	{
		api.POST("/login", handlers.Login)
		api.POST("/paiement", handlers.SubmitPayment)
		api.GET("/vip-status", handlers.VIPStatus)

		api.POST("/forgot-password", handlers.ForgotPassword)
		api.POST("/verify-otp", handlers.VerifyOTP)
		api.POST("/reset-password", handlers.ResetPassword)

		api.GET("/videos", handlers.ListVideos)
		api.GET("/videos/:id", handlers.GetVideo)
		api.POST("/videos", handlers.CreateVideo)
		api.DELETE("/videos/:id", handlers.DeleteVideo)
	}

	return &Server{
		router: router,
		config: cfg,
		log:    log,
	}
}

func (s *Server) Start() error {
	s.log.Info("starting web server", zap.String("port", s.config.ServerPort))
	return s.router.Run(":" + s.config.ServerPort)
}
