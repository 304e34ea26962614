package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/waseem196/down-fb/internal/models"
	"github.com/waseem196/down-fb/internal/services/materializer"
	"github.com/waseem196/down-fb/internal/utils"
)

const completionCookieMaxAge = 60

var tokenRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Materializer interface {
	Materialize(ctx context.Context, link string, maxHeight int) (*materializer.Download, error)
}

type DownloadHandler struct {
	validator      URLValidator
	materializer   Materializer
	filenameMaxLen int
}

func NewDownloadHandler(validator URLValidator, m Materializer, filenameMaxLen int) *DownloadHandler {
	return &DownloadHandler{
		validator:      validator,
		materializer:   m,
		filenameMaxLen: filenameMaxLen,
	}
}

// Download godoc
// @Summary Download a video as a single file
// @Description Downloads the video into a scratch workspace, merges audio and video when needed, and streams the resulting file as an attachment. When token is given a short-lived dl-<token> cookie marks the start of the transfer.
// @Tags videos
// @Produce octet-stream
// @Param url query string true "Facebook video URL"
// @Param maxHeight query int false "Preferred maximum height in pixels"
// @Param filename query string false "Suggested file name" default(video.mp4)
// @Param token query string false "Client token for the completion cookie"
// @Success 200 {file} file
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/download [get]
func (h *DownloadHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()

	var query models.DownloadQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		errorResponse(c, utils.NewInvalidInputError("Invalid query parameters", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}

	link := strings.TrimSpace(query.SourceURL())
	if !h.validator.IsAcceptable(link) {
		errorResponse(c, utils.NewInvalidURLError(link))
		return
	}

	download, err := h.materializer.Materialize(ctx, link, parseMaxHeight(query.MaxHeight))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client is gone, nobody to answer
			c.Abort()
			return
		}
		respondError(c, err, "Failed to materialize video")
		return
	}
	defer download.Body.Close()

	filename := h.filename(query.Filename, download.Ext)
	c.Header("Content-Type", download.MimeType)
	c.Header("Content-Length", strconv.FormatInt(download.Size, 10))
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Header("Cache-Control", "no-store")

	if tokenRegex.MatchString(query.Token) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie("dl-"+query.Token, "1", completionCookieMaxAge, "/", "", false, false)
	}

	c.Status(http.StatusOK)

	written, err := io.Copy(c.Writer, download.Body)
	if err != nil {
		utils.LogWarn(ctx, "Download stream interrupted", utils.Fields{
			"bytes_written": written,
			"size":          download.Size,
			"error":         err.Error(),
		})
		return
	}

	utils.LogInfo(ctx, "Successfully streamed video", utils.Fields{
		"bytes_written": written,
		"file_name":     filename,
	})
}

// filename keeps the caller's base name but always ends in the produced container's extension.
func (h *DownloadHandler) filename(requested, ext string) string {
	base := strings.TrimSpace(requested)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return utils.SanitizeFilename(base, ext, h.filenameMaxLen)
}

// parseMaxHeight ignores anything that isn't a positive integer.
func parseMaxHeight(raw string) int {
	height, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || height <= 0 {
		return 0
	}
	return height
}
