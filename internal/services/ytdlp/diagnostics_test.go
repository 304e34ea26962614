package ytdlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		stderr string
		want   Category
	}{
		{"ERROR: [facebook] 1: This video is private", CategoryPrivate},
		{"ERROR: Private video. Sign in if you've been granted access", CategoryPrivate},
		{"ERROR: [facebook] 1: This video is not available", CategoryUnavailable},
		{"ERROR: [facebook] 1: login required", CategoryLoginRequired},
		{"ERROR: [facebook] LoginRequired: you must log in", CategoryLoginRequired},
		{"ERROR: unable to download webpage: HTTP Error 404: Not Found", CategoryNotFound},
		{"ERROR: This video is not available in your country", CategoryRegionBlocked},
		{"ERROR: [facebook] 1: Video not available in your region", CategoryRegionBlocked},
		{"ERROR: This content isn't available right now", CategoryRegionBlocked},
		{"ERROR: video is geo restricted", CategoryRegionBlocked},
		{"ERROR: something unexpected", CategoryUnknown},
		{"", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.stderr, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.stderr))
		})
	}
}

func TestCategoryMessage(t *testing.T) {
	assert.Equal(t, "This video requires a Facebook login. Only public videos are supported.", CategoryLoginRequired.Message())
	assert.Equal(t, CategoryUnknown.Message(), Category("something-new").Message())
	for _, c := range []Category{CategoryPrivate, CategoryUnavailable, CategoryNotFound, CategoryRegionBlocked, CategoryToolMissing} {
		assert.NotEmpty(t, c.Message())
	}
}

func TestCappedBuffer(t *testing.T) {
	b := &cappedBuffer{limit: 4}
	n, err := b.Write([]byte("abc"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	n, _ = b.Write([]byte("defg"))
	assert.Equal(t, 4, n)
	_, _ = b.Write([]byte("h"))
	assert.Equal(t, "abcd", b.String())
}

func TestRedactArgs(t *testing.T) {
	args := []string{"--dump-json", "--cookies", "/secrets/cookies.txt", "https://www.facebook.com/video/1"}
	got := redactArgs(args)
	assert.Equal(t, []string{"--dump-json", "--cookies", "[redacted]", "https://www.facebook.com/video/1"}, got)
	assert.Equal(t, "/secrets/cookies.txt", args[2])
}
