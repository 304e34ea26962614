package ytdlp

import "regexp"

// Category is a user-facing bucket for an extraction failure.
type Category string

const (
	CategoryPrivate       Category = "private"
	CategoryUnavailable   Category = "unavailable"
	CategoryLoginRequired Category = "login_required"
	CategoryNotFound      Category = "not_found"
	CategoryRegionBlocked Category = "region_blocked"
	CategoryToolMissing   Category = "tool_missing"
	CategoryUnknown       Category = "unknown"
)

// Rules are matched in order against the tool's stderr; the first hit wins.
// The wording belongs to the upstream tool and changes between releases.
var diagnosticRules = []struct {
	category Category
	pattern  *regexp.Regexp
}{
	{CategoryRegionBlocked, regexp.MustCompile(`(?i)content isn.t available|not available in your (country|region)|geo.?restrict`)},
	{CategoryPrivate, regexp.MustCompile(`(?i)private video|video is private`)},
	{CategoryUnavailable, regexp.MustCompile(`(?i)not available`)},
	{CategoryLoginRequired, regexp.MustCompile(`(?i)login required|loginrequired`)},
	{CategoryNotFound, regexp.MustCompile(`(?i)\b404\b|not found`)},
}

// Classify maps diagnostic text to a category, falling back to CategoryUnknown.
func Classify(diagnostic string) Category {
	for _, rule := range diagnosticRules {
		if rule.pattern.MatchString(diagnostic) {
			return rule.category
		}
	}
	return CategoryUnknown
}

var categoryMessages = map[Category]string{
	CategoryPrivate:       "This video is private.",
	CategoryUnavailable:   "This video is not available.",
	CategoryLoginRequired: "This video requires a Facebook login. Only public videos are supported.",
	CategoryNotFound:      "Video not found. Please check the URL and try again.",
	CategoryRegionBlocked: "This content is not available in your region.",
	CategoryToolMissing:   "The video service is temporarily unavailable. Please try again later.",
	CategoryUnknown:       "Could not fetch video. Please check the URL and try again.",
}

func (c Category) Message() string {
	if msg, ok := categoryMessages[c]; ok {
		return msg
	}
	return categoryMessages[CategoryUnknown]
}
