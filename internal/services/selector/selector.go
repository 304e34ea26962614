// Package selector ranks the encodings reported by the extraction tool into the
// two user-facing renditions (high and standard).
package selector

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/waseem196/down-fb/internal/models"
)

// Transport protocols that need multi-request reassembly and can't be fetched as one file.
var manifestProtocols = map[string]struct{}{
	"http_dash_segments": {},
	"hls":                {},
	"m3u8":               {},
	"m3u8_native":        {},
}

func isManifest(e models.RawEncoding) bool {
	_, ok := manifestProtocols[e.Protocol]
	return ok
}

func strict(e models.RawEncoding) bool {
	return e.URL != "" &&
		e.Ext == "mp4" &&
		e.HasVideo() && e.HasAudio() &&
		e.Height != nil &&
		!isManifest(e)
}

func muxed(e models.RawEncoding) bool {
	return e.URL != "" && e.HasVideo() && e.HasAudio() && !isManifest(e)
}

func fetchable(e models.RawEncoding) bool {
	return e.URL != ""
}

// Select returns exactly two renditions, high first, or nil when no encoding has a usable URL.
func Select(encodings []models.RawEncoding) []models.Rendition {
	var pool []models.RawEncoding
	for _, accept := range []func(models.RawEncoding) bool{strict, muxed, fetchable} {
		pool = filter(encodings, accept)
		if len(pool) > 0 {
			break
		}
	}
	if len(pool) == 0 {
		return nil
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return heightOf(pool[i]) > heightOf(pool[j])
	})

	top := pool[0]
	high := makeRendition(models.QualityHigh, top)

	for _, candidate := range pool[1:] {
		if heightOf(candidate) < heightOf(top) {
			return []models.Rendition{high, makeRendition(models.QualityStandard, candidate)}
		}
	}

	// Only one resolution known: offer the same stream as the standard tier so
	// the client always has two choices.
	standard := makeRendition(models.QualityStandard, top)
	standard.Placeholder = true
	return []models.Rendition{high, standard}
}

func filter(encodings []models.RawEncoding, accept func(models.RawEncoding) bool) []models.RawEncoding {
	var out []models.RawEncoding
	for _, e := range encodings {
		if accept(e) {
			out = append(out, e)
		}
	}
	return out
}

// heightOf ranks unknown heights below every reported one.
func heightOf(e models.RawEncoding) int {
	if e.Height == nil {
		return -1
	}
	return *e.Height
}

func makeRendition(quality models.Quality, e models.RawEncoding) models.Rendition {
	ext := e.Ext
	if ext == "" {
		ext = "mp4"
	}
	r := models.Rendition{
		Quality:  quality,
		Label:    Label(quality, e.Height),
		URL:      e.URL,
		Ext:      ext,
		FormatID: e.FormatID,
		Width:    e.Width,
		Height:   e.Height,
		Filesize: e.Filesize,
	}
	if e.Filesize != nil && *e.Filesize > 0 {
		r.SizeLabel = humanize.IBytes(uint64(*e.Filesize))
	}
	return r
}

// Label renders "HD 1080p" / "SD 480p", dropping the resolution when it is unknown.
func Label(quality models.Quality, height *int) string {
	prefix := "SD"
	if quality == models.QualityHigh {
		prefix = "HD"
	}
	if height == nil || *height <= 0 {
		return prefix
	}
	return fmt.Sprintf("%s %dp", prefix, *height)
}
