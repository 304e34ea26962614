package models

// RawEncoding is one candidate stream as reported by the extraction tool.
// Optional attributes are nil when the tool did not report them.
type RawEncoding struct {
	FormatID   string
	URL        string
	Ext        string
	Width      *int
	Height     *int
	VideoCodec string
	AudioCodec string
	Filesize   *int64
	Protocol   string
}

// CodecNone is the sentinel the tool uses for an absent codec.
const CodecNone = "none"

func (e RawEncoding) HasVideo() bool {
	return e.VideoCodec != "" && e.VideoCodec != CodecNone
}

func (e RawEncoding) HasAudio() bool {
	return e.AudioCodec != "" && e.AudioCodec != CodecNone
}

type Quality string

const (
	QualityHigh     Quality = "high"
	QualityStandard Quality = "standard"
)

// Rendition is one user-facing download choice.
type Rendition struct {
	Quality     Quality `json:"quality"`
	Label       string  `json:"label"`
	URL         string  `json:"url"`
	Ext         string  `json:"ext"`
	FormatID    string  `json:"format_id,omitempty"`
	Width       *int    `json:"width,omitempty"`
	Height      *int    `json:"height,omitempty"`
	Filesize    *int64  `json:"filesize,omitempty"`
	SizeLabel   string  `json:"size_label,omitempty"`
	Placeholder bool    `json:"placeholder"`
}

type VideoInfo struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Thumbnail     string      `json:"thumbnail"`
	Duration      float64     `json:"duration"`
	DurationLabel string      `json:"duration_label,omitempty"`
	Uploader      *string     `json:"uploader,omitempty"`
	Formats       []Rendition `json:"formats"`
	SourceURL     string      `json:"source_url"`
}

type EventType string

const (
	EventTypeStep  EventType = "step"
	EventTypeDone  EventType = "done"
	EventTypeError EventType = "error"
)

// Ordinal progress steps of one extraction.
const (
	StepValidated = 1
	StepSpawned   = 2
	StepReceiving = 3
	StepParsed    = 4
)

// ProgressEvent is one record of the fetch progress stream.
type ProgressEvent struct {
	Type  EventType  `json:"type"`
	Step  int        `json:"step,omitempty"`
	Data  *VideoInfo `json:"data,omitempty"`
	Error string     `json:"error,omitempty"`
	Code  string     `json:"code,omitempty"`
}

func StepEvent(step int) ProgressEvent {
	return ProgressEvent{Type: EventTypeStep, Step: step}
}

func DoneEvent(info *VideoInfo) ProgressEvent {
	return ProgressEvent{Type: EventTypeDone, Data: info}
}

func ErrorEvent(code, message string) ProgressEvent {
	return ProgressEvent{Type: EventTypeError, Error: message, Code: code}
}

type FetchRequest struct {
	URL string `json:"url" binding:"required"`
}

// DownloadQuery accepts the source link as url or, for older clients, fbUrl.
type DownloadQuery struct {
	URL       string `form:"url"`
	FBURL     string `form:"fbUrl"`
	MaxHeight string `form:"maxHeight"`
	Filename  string `form:"filename"`
	Token     string `form:"token"`
}

func (q DownloadQuery) SourceURL() string {
	if q.URL != "" {
		return q.URL
	}
	return q.FBURL
}

type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp string       `json:"timestamp"`
	Version   string       `json:"version"`
	YTDLP     ToolHealth   `json:"ytdlp"`
	Scratch   ScratchState `json:"scratch"`
}

type ToolHealth struct {
	Available    bool    `json:"available"`
	Version      *string `json:"version"`
	ResponseTime string  `json:"response_time,omitempty"`
	Error        string  `json:"error,omitempty"`
}

type ScratchState struct {
	Root     string `json:"root"`
	Writable bool   `json:"writable"`
}
