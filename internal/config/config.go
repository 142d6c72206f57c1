package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Storage
	DataDir  string // Root directory for per-project workspaces
	CacheDir string // Directory for the file-backed request cache
	SongsDir string // Directory of background music files (*.mp3)
	TempDir  string // Scratch directory for FFmpeg intermediates

	// Redis (optional — when set, the request cache is Redis-backed)
	RedisURL string

	// OpenAI (script, search terms, upload metadata)
	OpenAIKey string

	// Gemini (alternate script backend, selected per request via aiModel)
	GeminiKey string

	// Pexels (stock footage search + download)
	PexelsKey     string
	PexelsPerPage int // Candidates requested per search term

	// TikTok TTS (narration synthesis)
	TikTokSessionID string

	// YouTube upload
	YouTubeClientSecrets string // Path to client_secret.json (missing = upload skipped)
	YouTubeTokenFile     string // Path to cached OAuth token
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:              getEnv("API_PORT", "8080"),
		BackendAPIKey:        getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", ""),
		DataDir:              getEnv("DATA_DIR", "./creations"),
		CacheDir:             getEnv("CACHE_DIR", "./cache"),
		SongsDir:             getEnv("SONGS_DIR", "./resources/songs"),
		TempDir:              getEnv("TEMP_DIR", os.TempDir()),
		RedisURL:             getEnv("REDIS_URL", ""),
		OpenAIKey:            getEnv("OPENAI_API_KEY", ""),
		GeminiKey:            getEnv("GEMINI_API_KEY", ""),
		PexelsKey:            getEnv("PEXELS_API_KEY", ""),
		PexelsPerPage:        getEnvInt("PEXELS_PER_PAGE", 15),
		TikTokSessionID:      getEnv("TIKTOK_SESSION_ID", ""),
		YouTubeClientSecrets: getEnv("YOUTUBE_CLIENT_SECRETS", "./client_secret.json"),
		YouTubeTokenFile:     getEnv("YOUTUBE_TOKEN_FILE", "./youtube_token.json"),
	}

	// Validate required fields
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	if cfg.PexelsKey == "" {
		return nil, fmt.Errorf("PEXELS_API_KEY is required")
	}

	if cfg.TikTokSessionID == "" {
		return nil, fmt.Errorf("TIKTOK_SESSION_ID is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
