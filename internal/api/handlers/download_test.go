package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/waseem196/down-fb/internal/services/materializer"
	"github.com/waseem196/down-fb/internal/services/validator"
)

type materializeFunc func(ctx context.Context, link string, maxHeight int) (*materializer.Download, error)

func (f materializeFunc) Materialize(ctx context.Context, link string, maxHeight int) (*materializer.Download, error) {
	return f(ctx, link, maxHeight)
}

type closeCounter struct {
	io.Reader
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestParseMaxHeight(t *testing.T) {
	assert.Equal(t, 720, parseMaxHeight("720"))
	assert.Equal(t, 1080, parseMaxHeight(" 1080 "))
	assert.Equal(t, 0, parseMaxHeight(""))
	assert.Equal(t, 0, parseMaxHeight("0"))
	assert.Equal(t, 0, parseMaxHeight("-1"))
	assert.Equal(t, 0, parseMaxHeight("720p"))
}

func TestDownloadFilename(t *testing.T) {
	h := NewDownloadHandler(nil, nil, 10)
	assert.Equal(t, "My_holiday.webm", h.filename("My holiday.mp4", "webm"))
	assert.Equal(t, "v12_final.mp4", h.filename("v1.2 final.mp4", "mp4"))
	assert.Equal(t, "video.mkv", h.filename("", "mkv"))
	assert.Equal(t, "abcdefghij.mp4", h.filename("abcdefghijklmnop.mp4", "mp4"))
}

func TestTokenRegex(t *testing.T) {
	assert.True(t, tokenRegex.MatchString("abc-DEF_123"))
	assert.False(t, tokenRegex.MatchString(""))
	assert.False(t, tokenRegex.MatchString("a;b"))
	assert.False(t, tokenRegex.MatchString(strings.Repeat("a", 65)))
}

func TestDownloadClosesBodyOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := &closeCounter{Reader: strings.NewReader("bytes")}
	h := NewDownloadHandler(
		validator.NewURLValidator([]string{"facebook.com"}, nil),
		materializeFunc(func(ctx context.Context, link string, maxHeight int) (*materializer.Download, error) {
			return &materializer.Download{Body: body, Size: 5, MimeType: "video/mp4", Ext: "mp4"}, nil
		}),
		80,
	)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/download?url=https://facebook.com/v/1", nil)
	h.Download(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bytes", w.Body.String())
	assert.Equal(t, 1, body.closed)
}

func TestDownloadClientGoneWritesNothing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewDownloadHandler(
		validator.NewURLValidator([]string{"facebook.com"}, nil),
		materializeFunc(func(ctx context.Context, link string, maxHeight int) (*materializer.Download, error) {
			return nil, context.Canceled
		}),
		80,
	)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/download?url=https://facebook.com/v/1", nil)
	h.Download(c)

	assert.Empty(t, w.Body.String())
	assert.True(t, c.IsAborted())
}

func TestDownloadUnexpectedErrorIsHidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewDownloadHandler(
		validator.NewURLValidator([]string{"facebook.com"}, nil),
		materializeFunc(func(ctx context.Context, link string, maxHeight int) (*materializer.Download, error) {
			return nil, errors.New("permission denied on /secret/path")
		}),
		80,
	)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/download?url=https://facebook.com/v/1", nil)
	h.Download(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "/secret/path")
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
