package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/liliang-cn/askweb/internal/api"
	"github.com/liliang-cn/askweb/internal/config"
	"github.com/liliang-cn/askweb/internal/llm"
	"github.com/liliang-cn/askweb/internal/repository"
	"github.com/liliang-cn/askweb/internal/scrape"
	"github.com/liliang-cn/askweb/internal/search"
	"github.com/liliang-cn/askweb/internal/service"
	"github.com/liliang-cn/askweb/internal/transport"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Local development convenience; the deployment exports real env vars
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.LLM.VerifySSL {
		logger.Warn("TLS verification is DISABLED for outbound calls")
	}
	logger.Info("configuration loaded",
		zap.String("model", cfg.LLM.Model),
		zap.String("llm_base_url", cfg.LLM.BaseURL),
		zap.String("search_provider", cfg.Search.Provider),
		zap.String("scraper_url", cfg.Scraper.URL),
	)

	// Chat log database. Best-effort: chat still works without it.
	var convRepo *repository.ConversationRepository
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Warn("failed to initialize chat log database, continuing without it", zap.Error(err))
	} else {
		defer db.Close()
		convRepo = repository.NewConversationRepository(db)
	}

	// Outbound HTTP clients, each owning its transport policy
	llmHTTP := transport.NewClient(transport.Options{VerifyTLS: cfg.LLM.VerifySSL, Timeout: cfg.LLM.Timeout})
	scraperHTTP := transport.NewClient(transport.Options{VerifyTLS: cfg.LLM.VerifySSL, Timeout: cfg.Scraper.Timeout})
	fallbackHTTP := transport.NewClient(transport.Options{VerifyTLS: cfg.LLM.VerifySSL, Timeout: cfg.Scraper.FallbackTimeout})
	searchHTTP := transport.NewClient(transport.Options{VerifyTLS: cfg.LLM.VerifySSL, Timeout: cfg.Search.Timeout})

	// LLM client. Failure here leaves /chat degraded (500) and /health
	// unhealthy rather than killing the process.
	llmClient, err := llm.New(cfg.LLM, llmHTTP)
	if err != nil {
		logger.Error("failed to initialize LLM client", zap.Error(err))
	}

	scrapeClient := scrape.New(cfg.Scraper, scraperHTTP, fallbackHTTP, logger.Named("scrape"))
	searchClient := search.NewAPIClient(cfg.Search, searchHTTP)

	// Pick the live-data backend and its health probe
	var (
		searcher service.Searcher
		scraper  service.Scraper
		probe    service.BackendProber
	)
	if cfg.Search.Provider == "serpapi" {
		searcher = searchClient
		probe = service.ProbeFunc(searchClient.Ping)
	} else {
		scraper = scrapeClient
		probe = service.ProbeFunc(scrapeClient.Health)
	}

	var chatLLM service.LLMClient
	var probeLLM service.LLMProber
	if llmClient != nil {
		chatLLM = llmClient
		probeLLM = llmClient
	}

	chatService := service.NewChatService(cfg, chatLLM, searcher, scraper, convRepo, logger.Named("chat"))
	healthService := service.NewHealthService(cfg, probeLLM, probe, logger.Named("health"))

	// Startup reachability report, mirrors what /health exposes
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 15*time.Second)
	boot := healthService.Check(bootCtx)
	bootCancel()
	logger.Info("startup probe", zap.String("status", boot.Status), zap.Any("services", boot.Services))

	// Setup router
	router := api.SetupRouter(chatService, healthService, logger.Named("api"))

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Chat.ResponseTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting AskWeb server", zap.String("address", cfg.Address()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
