package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	API       APIConfig
	YTDLP     YTDLPConfig
	Download  DownloadConfig
	Validator ValidatorConfig
	CORS      CORSConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ShutdownTimeout time.Duration
}

type APIConfig struct {
	RateLimitRequests      int
	RateLimitWindow        time.Duration
	RateLimitSweepInterval time.Duration
}

// YTDLPConfig describes how the external extraction tool is invoked.
type YTDLPConfig struct {
	BinaryPath            string
	CookiesPath           string
	FFmpegPath            string
	ExtractTimeout        time.Duration
	ExtractSocketTimeout  int
	DownloadSocketTimeout int
	VersionTimeout        time.Duration
}

type DownloadConfig struct {
	ScratchRoot       string
	OrphanMaxAge      time.Duration
	OrphanSweepPeriod time.Duration
	FilenameMaxLength int
	MaxConcurrent     int
}

type ValidatorConfig struct {
	AllowedDomains []string
	ShortLinkHosts []string
}

type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{}
	var err error

	// Server configuration
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")
	if cfg.Server.ShutdownTimeout, err = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	// Rate limiting
	cfg.API.RateLimitRequests = getEnvInt("RATE_LIMIT_MAX", 10)
	if cfg.API.RateLimitWindow, err = getEnvDuration("RATE_LIMIT_WINDOW", "60s"); err != nil {
		return nil, err
	}
	if cfg.API.RateLimitSweepInterval, err = getEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	// yt-dlp
	cfg.YTDLP.BinaryPath = getEnv("YTDLP_PATH", "yt-dlp")
	cfg.YTDLP.CookiesPath = getEnv("YTDLP_COOKIES_PATH", "")
	cfg.YTDLP.FFmpegPath = getEnv("FFMPEG_PATH", "")
	if cfg.YTDLP.ExtractTimeout, err = getEnvDuration("YTDLP_EXTRACT_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	cfg.YTDLP.ExtractSocketTimeout = getEnvInt("YTDLP_EXTRACT_SOCKET_TIMEOUT", 15)
	cfg.YTDLP.DownloadSocketTimeout = getEnvInt("YTDLP_DOWNLOAD_SOCKET_TIMEOUT", 30)
	if cfg.YTDLP.VersionTimeout, err = getEnvDuration("YTDLP_VERSION_TIMEOUT", "5s"); err != nil {
		return nil, err
	}

	// Scratch space
	cfg.Download.ScratchRoot = getEnv("SCRATCH_ROOT", os.TempDir())
	if cfg.Download.OrphanMaxAge, err = getEnvDuration("SCRATCH_ORPHAN_MAX_AGE", "1h"); err != nil {
		return nil, err
	}
	if cfg.Download.OrphanSweepPeriod, err = getEnvDuration("SCRATCH_ORPHAN_SWEEP_PERIOD", "10m"); err != nil {
		return nil, err
	}
	cfg.Download.FilenameMaxLength = getEnvInt("FILENAME_MAX_LENGTH", 80)
	cfg.Download.MaxConcurrent = getEnvInt("DOWNLOAD_MAX_CONCURRENT", 4)

	// URL allowlist
	cfg.Validator.AllowedDomains = getEnvStringSlice("ALLOWED_DOMAINS", []string{"facebook.com"})
	cfg.Validator.ShortLinkHosts = getEnvStringSlice("SHORT_LINK_HOSTS", []string{"fb.watch"})

	cfg.CORS = loadCORSConfig()
	cfg.Metrics.Enabled = getEnvBool("METRICS_ENABLED", true)

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
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadCORSConfig reads CORS settings; the browser front-end is usually served from another origin in development
func loadCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled: getEnvBool("CORS_ENABLED", false),
		AllowedOrigins: getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
		}),
		AllowedMethods: getEnvStringSlice("CORS_ALLOWED_METHODS", []string{
			"GET", "POST", "OPTIONS",
		}),
		AllowedHeaders: getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{
			"Origin", "Content-Type", "Accept",
		}),
		ExposedHeaders: getEnvStringSlice("CORS_EXPOSED_HEADERS", []string{
			"Content-Disposition", "Content-Length", "Retry-After",
		}),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
		MaxAge:           getEnvInt("CORS_MAX_AGE", 3600),
	}
}
