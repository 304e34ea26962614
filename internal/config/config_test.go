package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.API.RateLimitRequests)
	assert.Equal(t, 60*time.Second, cfg.API.RateLimitWindow)
	assert.Equal(t, "yt-dlp", cfg.YTDLP.BinaryPath)
	assert.Equal(t, 30*time.Second, cfg.YTDLP.ExtractTimeout)
	assert.Equal(t, 15, cfg.YTDLP.ExtractSocketTimeout)
	assert.Equal(t, 80, cfg.Download.FilenameMaxLength)
	assert.Equal(t, 4, cfg.Download.MaxConcurrent)
	assert.Equal(t, []string{"facebook.com"}, cfg.Validator.AllowedDomains)
	assert.Equal(t, []string{"fb.watch"}, cfg.Validator.ShortLinkHosts)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "3")
	t.Setenv("RATE_LIMIT_WINDOW", "10s")
	t.Setenv("YTDLP_COOKIES_PATH", "/secrets/cookies.txt")
	t.Setenv("ALLOWED_DOMAINS", "facebook.com, instagram.com ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.API.RateLimitRequests)
	assert.Equal(t, 10*time.Second, cfg.API.RateLimitWindow)
	assert.Equal(t, "/secrets/cookies.txt", cfg.YTDLP.CookiesPath)
	assert.Equal(t, []string{"facebook.com", "instagram.com"}, cfg.Validator.AllowedDomains)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("YTDLP_EXTRACT_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YTDLP_EXTRACT_TIMEOUT")
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "ten")
	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))
}
