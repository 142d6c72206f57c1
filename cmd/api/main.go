package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mesabjorn/MoneyPrinter/internal/api"
	"github.com/mesabjorn/MoneyPrinter/internal/cache"
	"github.com/mesabjorn/MoneyPrinter/internal/config"
	"github.com/mesabjorn/MoneyPrinter/internal/pipeline"
	"github.com/mesabjorn/MoneyPrinter/internal/services"
)

func main() {
	log.Println("Starting MoneyPrinter API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Request cache: Redis when configured, local files otherwise
	var store cache.Store
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
		log.Println("Using Redis request cache")
	} else {
		fileStore, err := cache.NewFileStore(cfg.CacheDir)
		if err != nil {
			log.Fatalf("Failed to initialize file cache: %v", err)
		}
		store = fileStore
		log.Printf("Using file request cache at %s", cfg.CacheDir)
	}

	// Initialize collaborator services
	pexelsSvc := services.NewPexelsService(cfg.PexelsKey, store)
	tiktokSvc := services.NewTikTokService(cfg.TikTokSessionID)
	ffmpegSvc := services.NewFFmpegService(cfg.TempDir)
	youtubeSvc := services.NewYouTubeService(cfg.YouTubeClientSecrets, cfg.YouTubeTokenFile)

	// gemini-* models route to the Gemini backend, everything else to OpenAI
	scripts := func(model string) services.ScriptGenerator {
		if services.IsGeminiModel(model) && cfg.GeminiKey != "" {
			return services.NewGeminiService(cfg.GeminiKey, model)
		}
		return services.NewOpenAIService(cfg.OpenAIKey, model)
	}

	pipe := pipeline.New(pipeline.Deps{
		Scripts:           scripts,
		Narration:         tiktokSvc,
		Subtitles:         services.NewSRTAligner(),
		Composer:          ffmpegSvc,
		Footage:           pexelsSvc,
		Uploader:          youtubeSvc,
		DataDir:           cfg.DataDir,
		SongsDir:          cfg.SongsDir,
		CandidatesPerTerm: cfg.PexelsPerPage,
	})

	// Create API handler
	handler := api.NewHandler(pipe)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
