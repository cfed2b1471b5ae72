package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"product-advisor/agentclient"
	"product-advisor/config"
	"product-advisor/knowledgebase"
	"product-advisor/web"
	"product-advisor/web/services"

	"go.uber.org/zap"
)

func main() {
	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	if cfg.APIKey == "" {
		logger.Warn("API_KEY is not set, agent and knowledge base calls will be rejected")
	}

	agent := agentclient.New(cfg, logger)
	kb := knowledgebase.New(cfg, logger)

	transcripts, err := services.NewTranscriptStore(cfg.MaxSessions, logger)
	if err != nil {
		logger.Fatal("Failed to create transcript store", zap.Error(err))
	}

	chatService := services.NewChatService(agent, transcripts, services.ChatServiceConfig{
		AgentID:         cfg.AgentID,
		AgentName:       cfg.AgentName,
		MaxDecodeDepth:  cfg.MaxDecodeDepth,
		EmailSentReset:  cfg.EmailSentResetSeconds,
		EmailErrorReset: cfg.EmailErrorResetSeconds,
	}, logger)
	knowledgeService := services.NewKnowledgeService(kb, cfg.KnowledgeBaseID, cfg.MaxUploadBytes, logger)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cleanupService := web.NewCleanupService(transcripts, logger)
	go cleanupService.Run(ctx, cfg.CleanupInterval, cfg.SessionRetentionAge)

	webServer := web.NewServer(chatService, knowledgeService, logger, cfg)

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting Product Advisor web server",
		zap.String("port", port),
		zap.String("agent_id", cfg.AgentID),
		zap.String("knowledge_base_id", cfg.KnowledgeBaseID))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}
