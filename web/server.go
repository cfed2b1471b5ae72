package web

import (
	"context"
	"net/http"
	"time"

	"product-advisor/advisor"
	"product-advisor/config"
	"product-advisor/web/handlers"
	"product-advisor/web/middleware"
	"product-advisor/web/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	router  *gin.Engine
	chat    *services.ChatService
	kb      *services.KnowledgeService
	limiter *middleware.SessionRateLimiter
	logger  *zap.Logger
	config  *config.Config
}

func NewServer(chat *services.ChatService, kb *services.KnowledgeService, logger *zap.Logger, config *config.Config) *Server {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = config.MaxUploadBytes + 1<<20

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		// Add logger to context
		c.Set("logger", logger)
		c.Next()
	})

	limiter := middleware.NewSessionRateLimiter(middleware.RateLimiterConfig{
		MessagesPerMinute: config.RateLimitMessagesPerMin,
		FilesPerHour:      config.RateLimitFilesPerHour,
		BurstSize:         config.RateLimitBurstSize,
		CleanupInterval:   config.CleanupInterval,
		IdleAfter:         config.SessionRetentionAge,
	}, logger)

	server := &Server{
		router:  router,
		chat:    chat,
		kb:      kb,
		limiter: limiter,
		logger:  logger,
		config:  config,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	chatHandler := handlers.NewChatHandler(s.chat, s.config.Theme, s.logger)
	kbHandler := handlers.NewKnowledgeBaseHandler(s.kb, s.logger)
	apiHandler := handlers.NewAPIHandler(s.chat, advisor.Normalizer{MaxDepth: s.config.MaxDecodeDepth}, s.logger)

	messageLimit := middleware.RateLimitMiddleware(s.limiter, "message")
	fileLimit := middleware.RateLimitMiddleware(s.limiter, "file")

	s.router.GET("/healthz", apiHandler.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Web routes
	pages := s.router.Group("/", middleware.SessionMiddleware())
	{
		pages.GET("/", chatHandler.Index)
		pages.POST("/chat", messageLimit, chatHandler.SendMessage)
		pages.POST("/chat/reset", chatHandler.Reset)
		pages.POST("/chat/email-summary", messageLimit, chatHandler.EmailSummary)

		pages.GET("/kb", kbHandler.Panel)
		pages.POST("/kb/documents", fileLimit, kbHandler.Upload)
		pages.POST("/kb/documents/delete", kbHandler.Delete)
	}

	// JSON API
	api := s.router.Group("/api", s.corsMiddleware(), middleware.SessionMiddleware())
	{
		api.GET("/kb/documents", kbHandler.ListDocuments)
		api.POST("/chat", messageLimit, apiHandler.Chat)
		api.POST("/normalize", apiHandler.Normalize)
		// preflight requests only match a route when one is registered
		api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if len(s.config.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.config.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.MaxAge = 12 * time.Hour
	return cors.New(corsCfg)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
			errCh <- err
		}
	}()

	// Wait for context cancellation
	select {
	case <-ctx.Done():
	case err := <-errCh:
		s.limiter.Stop()
		return err
	}

	s.logger.Info("Shutting down web server")
	s.limiter.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Stop releases background resources when Start was never called.
func (s *Server) Stop() {
	s.limiter.Stop()
}
