package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/waseem196/down-fb/internal/models"
	"github.com/waseem196/down-fb/internal/services/ytdlp"
	"github.com/waseem196/down-fb/internal/utils"
)

const Version = "1.0.0"

type HealthHandler struct {
	invoker        ytdlp.Invoker
	versionTimeout time.Duration
	fs             afero.Fs
	scratchRoot    string
}

func NewHealthHandler(invoker ytdlp.Invoker, versionTimeout time.Duration, fs afero.Fs, scratchRoot string) *HealthHandler {
	return &HealthHandler{
		invoker:        invoker,
		versionTimeout: versionTimeout,
		fs:             fs,
		scratchRoot:    scratchRoot,
	}
}

// Health godoc
// @Summary Health check endpoint
// @Description Reports whether yt-dlp answers a version query. A missing tool degrades the status but never fails the request.
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	response := models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
		YTDLP:     h.checkTool(ctx),
		Scratch: models.ScratchState{
			Root:     h.scratchRoot,
			Writable: h.checkScratch(ctx) == nil,
		},
	}

	if !response.YTDLP.Available {
		response.Status = "degraded"
	}

	c.JSON(http.StatusOK, response)
}

// Readiness godoc
// @Summary Readiness check endpoint
// @Description Check if the service is ready to accept requests
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Success 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()

	ready := true
	checks := make(map[string]interface{})

	if tool := h.checkTool(ctx); !tool.Available {
		ready = false
		checks["ytdlp"] = map[string]interface{}{
			"ready": false,
			"error": tool.Error,
		}
	} else {
		checks["ytdlp"] = map[string]interface{}{
			"ready": true,
		}
	}

	if err := h.checkScratch(ctx); err != nil {
		ready = false
		checks["scratch"] = map[string]interface{}{
			"ready": false,
			"error": err.Error(),
		}
	} else {
		checks["scratch"] = map[string]interface{}{
			"ready": true,
		}
	}

	response := map[string]interface{}{
		"ready":     ready,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	if ready {
		c.JSON(http.StatusOK, response)
	} else {
		c.JSON(http.StatusServiceUnavailable, response)
	}
}

// Liveness godoc
// @Summary Liveness check endpoint
// @Description Check if the service is alive
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /live [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) checkTool(ctx context.Context) models.ToolHealth {
	start := time.Now()

	version, err := ytdlp.Version(ctx, h.invoker, h.versionTimeout)
	responseTime := time.Since(start).String()

	if err != nil {
		utils.LogWarn(ctx, "yt-dlp health check failed", utils.Fields{"error": err.Error()})
		return models.ToolHealth{
			Available:    false,
			ResponseTime: responseTime,
			Error:        err.Error(),
		}
	}

	return models.ToolHealth{
		Available:    true,
		Version:      &version,
		ResponseTime: responseTime,
	}
}

// checkScratch writes and removes a probe file under the scratch root.
func (h *HealthHandler) checkScratch(ctx context.Context) error {
	probe := filepath.Join(h.scratchRoot, ".health-"+uuid.New().String())
	if err := afero.WriteFile(h.fs, probe, []byte("ok"), 0o600); err != nil {
		utils.LogWarn(ctx, "Scratch root is not writable", utils.Fields{"error": err.Error()})
		return err
	}
	return h.fs.Remove(probe)
}
