package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	testCases := []struct {
		name     string
		title    string
		ext      string
		maxLen   int
		expected string
	}{
		{
			name:     "Plain title",
			title:    "Summer trip",
			ext:      "mp4",
			maxLen:   80,
			expected: "Summer_trip.mp4",
		},
		{
			name:     "Punctuation, symbols and repeated whitespace",
			title:    "Wow!!  Look   at\tthis — 🎉 (part 2)",
			ext:      "mp4",
			maxLen:   80,
			expected: "Wow_Look_at_this_part_2.mp4",
		},
		{
			name:     "Dots in title do not leak into the extension",
			title:    "clip.final.v2",
			ext:      "webm",
			maxLen:   80,
			expected: "clipfinalv2.webm",
		},
		{
			name:     "Extension given with leading dot",
			title:    "a b",
			ext:      ".mkv",
			maxLen:   80,
			expected: "a_b.mkv",
		},
		{
			name:     "Only symbols falls back to default name",
			title:    "!!! ??? ***",
			ext:      "mp4",
			maxLen:   80,
			expected: "video.mp4",
		},
		{
			name:     "Empty title",
			title:    "",
			ext:      "",
			maxLen:   80,
			expected: "video.mp4",
		},
		{
			name:     "Truncated to bound",
			title:    strings.Repeat("ab ", 10),
			ext:      "mp4",
			maxLen:   8,
			expected: "ab_ab_ab.mp4",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeFilename(tc.title, tc.ext, tc.maxLen)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestSanitizeFilenameProperties(t *testing.T) {
	title := "  Héllo,   wörld!!! ... ___ «quoted» --- " + strings.Repeat("x", 200)
	got := SanitizeFilename(title, "mp4", 80)

	require.True(t, strings.HasSuffix(got, ".mp4"))
	base := strings.TrimSuffix(got, ".mp4")
	assert.LessOrEqual(t, len(base), 80)
	assert.NotContains(t, base, "__")
	assert.False(t, strings.HasPrefix(base, "_"))
	for _, r := range base {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		assert.Truef(t, ok, "unexpected rune %q in %q", r, base)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "", FormatDuration(0))
	assert.Equal(t, "", FormatDuration(-3))
	assert.Equal(t, "0:07", FormatDuration(7.9))
	assert.Equal(t, "2:05", FormatDuration(125))
	assert.Equal(t, "1:01:01", FormatDuration(3661))
}

func TestAppErrors(t *testing.T) {
	err := NewRateLimitError(42)
	assert.Equal(t, ErrorCodeRateLimited, err.Code)
	assert.Equal(t, http.StatusTooManyRequests, err.StatusCode)
	assert.Equal(t, 42, err.Details["retry_after"])
	assert.Contains(t, err.Message, "42 seconds")

	wrapped := error(NewNoFormatsError())
	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeNoFormats, appErr.Code)

	_, ok = AsAppError(context.Canceled)
	assert.False(t, ok)
}

func TestGenerateIDs(t *testing.T) {
	correlationID := GenerateCorrelationID()
	requestID := GenerateRequestID()

	assert.NotEmpty(t, correlationID)
	assert.True(t, strings.HasPrefix(requestID, "req_"))
	assert.NotEqual(t, correlationID, requestID)
}

func TestContextIDs(t *testing.T) {
	ctx := WithRequestID(WithCorrelationID(context.Background(), "corr"), "req")
	assert.Equal(t, "corr", GetCorrelationID(ctx))
	assert.Equal(t, "req", GetRequestID(ctx))

	entry := ComponentLogger(ctx, "extractor")
	assert.Equal(t, "extractor", entry.Data["component"])
	assert.Equal(t, "req", entry.Data["request_id"])
}

func TestLogLineShape(t *testing.T) {
	var buf bytes.Buffer
	GetLogger().SetOutput(&buf)
	defer GetLogger().SetOutput(os.Stdout)
	previous := GetLogger().GetLevel()
	SetOutputLevel(logrus.InfoLevel)
	defer SetOutputLevel(previous)

	ctx := WithRequestID(WithCorrelationID(context.Background(), "corr"), "req")
	LogInfo(ctx, "hello", Fields{"url": "https://www.facebook.com/video/1"})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.Contains(t, line, "timestamp")
	assert.Equal(t, "corr", line["correlation_id"])
	assert.Equal(t, "req", line["request_id"])
	assert.Equal(t, "https://www.facebook.com/video/1", line["url"])
}
