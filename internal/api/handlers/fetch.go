package handlers

import (
	"context"
	"io"
	"strings"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/waseem196/down-fb/internal/models"
	"github.com/waseem196/down-fb/internal/utils"
)

// URLValidator decides whether a link may be handed to the extraction tool.
type URLValidator interface {
	IsAcceptable(raw string) bool
}

// ProgressStreamer runs one extraction and reports it as events.
type ProgressStreamer interface {
	Stream(ctx context.Context, link string) <-chan models.ProgressEvent
}

type FetchHandler struct {
	validator URLValidator
	emitter   ProgressStreamer
}

func NewFetchHandler(validator URLValidator, emitter ProgressStreamer) *FetchHandler {
	return &FetchHandler{
		validator: validator,
		emitter:   emitter,
	}
}

// Fetch godoc
// @Summary Extract video metadata with live progress
// @Description Validates a Facebook video URL and streams extraction progress as server-sent events. Each record is a JSON ProgressEvent: step events 1-4, then a single done (with the video info) or error event.
// @Tags videos
// @Accept json
// @Produce text/event-stream
// @Param request body models.FetchRequest true "Facebook video URL"
// @Success 200 {object} models.ProgressEvent
// @Failure 400 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Router /api/fetch [post]
func (h *FetchHandler) Fetch(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.FetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, utils.NewInvalidInputError("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}

	link := strings.TrimSpace(req.URL)
	if !h.validator.IsAcceptable(link) {
		errorResponse(c, utils.NewInvalidURLError(link))
		return
	}

	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	utils.LogInfo(ctx, "Streaming extraction progress", utils.Fields{"url": link})

	events := h.emitter.Stream(ctx, link)
	c.Stream(func(w io.Writer) bool {
		evt, ok := <-events
		if !ok {
			return false
		}
		c.Render(-1, sse.Event{Data: evt})
		return evt.Type == models.EventTypeStep
	})
}
