package utils

import (
	"fmt"
	"regexp"
	"strings"
)

const DefaultFilenameBase = "video"

var (
	nonWordRegex    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	underscoreRegex = regexp.MustCompile(`_+`)
)

// SanitizeFilename turns a free-form title into "<base>.<ext>" where base holds only
// ASCII word characters and single underscores and is at most maxLen bytes long.
func SanitizeFilename(title, ext string, maxLen int) string {
	safe := nonWordRegex.ReplaceAllString(title, "")
	safe = whitespaceRegex.ReplaceAllString(safe, "_")
	safe = underscoreRegex.ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, "_")

	if maxLen > 0 && len(safe) > maxLen {
		safe = strings.TrimRight(safe[:maxLen], "_")
	}
	if safe == "" {
		safe = DefaultFilenameBase
	}

	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "mp4"
	}
	return safe + "." + ext
}

// FormatDuration renders seconds as m:ss or h:mm:ss; non-positive input yields "".
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
