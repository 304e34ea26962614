package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/waseem196/down-fb/internal/metrics"
	"github.com/waseem196/down-fb/internal/models"
	"github.com/waseem196/down-fb/internal/services/selector"
	"github.com/waseem196/down-fb/internal/utils"
)

// Checkpoint marks progress of a single extraction.
type Checkpoint int

const (
	// CheckpointSpawned fires right after the process starts.
	CheckpointSpawned Checkpoint = iota + 1
	// CheckpointReceiving fires on the first stdout bytes.
	CheckpointReceiving
)

const (
	DefaultTitle = "Facebook Video"

	// Upper bound on the JSON document kept in memory.
	maxMetadataBytes = 32 << 20
	maxStderrBytes   = 64 << 10
)

type ExtractorConfig struct {
	Timeout       time.Duration
	SocketTimeout int
	CookiesPath   string
}

type Extractor struct {
	invoker Invoker
	config  ExtractorConfig
	metrics *metrics.Metrics
}

func NewExtractor(invoker Invoker, cfg ExtractorConfig, m *metrics.Metrics) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.SocketTimeout <= 0 {
		cfg.SocketTimeout = 15
	}
	return &Extractor{invoker: invoker, config: cfg, metrics: m}
}

// Args builds the metadata-only invocation for link.
func (e *Extractor) Args(link string) []string {
	args := []string{
		"--dump-json",
		"--no-playlist",
		"--no-warnings",
		"--socket-timeout", strconv.Itoa(e.config.SocketTimeout),
	}
	if e.config.CookiesPath != "" {
		args = append(args, "--cookies", e.config.CookiesPath)
	}
	return append(args, link)
}

// Extract runs the tool in metadata mode and reduces its output to a VideoInfo.
// onProgress may be nil. User-facing failures are returned as *utils.AppError;
// cancellation of ctx by the caller is returned as ctx.Err().
func (e *Extractor) Extract(ctx context.Context, link string, onProgress func(Checkpoint)) (*models.VideoInfo, error) {
	logger := utils.ComponentLogger(ctx, "extractor").WithField("url", link)
	started := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	notify := func(cp Checkpoint) func() {
		if onProgress == nil {
			return nil
		}
		return func() { onProgress(cp) }
	}

	logger.WithFields(logrus.Fields{
		"timeout":      e.config.Timeout.String(),
		"with_cookies": e.config.CookiesPath != "",
	}).Info("Starting metadata extraction")

	result, err := Run(runCtx, e.invoker, e.Args(link), RunOptions{
		OnStarted:     notify(CheckpointSpawned),
		OnFirstOutput: notify(CheckpointReceiving),
		StdoutLimit:   maxMetadataBytes,
		StderrLimit:   maxStderrBytes,
	})

	elapsed := time.Since(started)
	info, appErr := e.settle(ctx, runCtx, result, err, logger)
	if appErr != nil {
		e.metrics.RecordExtraction(resultLabel(appErr), elapsed.Seconds())
		return nil, appErr
	}
	info.SourceURL = link

	e.metrics.RecordExtraction("success", elapsed.Seconds())
	logger.WithFields(logrus.Fields{
		"video_id": info.ID,
		"duration": elapsed.String(),
	}).Info("Metadata extraction completed")
	return info, nil
}

func (e *Extractor) settle(ctx, runCtx context.Context, result *Result, err error, logger *logrus.Entry) (*models.VideoInfo, error) {
	if ctx.Err() != nil {
		logger.Info("Extraction abandoned by caller")
		return nil, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		logger.Warn("Extraction timed out")
		return nil, utils.NewExtractionTimeoutError()
	}
	if err != nil {
		category := CategoryUnknown
		if IsNotInstalled(err) {
			category = CategoryToolMissing
		}
		logger.WithError(err).WithField("category", category).Error("Failed to run extraction tool")
		return nil, utils.NewExtractionFailedError(string(category), category.Message())
	}

	if result.ExitCode != 0 {
		category := Classify(result.Stderr)
		logger.WithFields(logrus.Fields{
			"exit_code": result.ExitCode,
			"category":  category,
			"stderr":    result.Stderr,
		}).Warn("Extraction tool exited with error")
		return nil, utils.NewExtractionFailedError(string(category), category.Message())
	}

	info, encodings, err := parseMetadata(result.Stdout)
	if err != nil {
		logger.WithError(err).Warn("Failed to parse extraction output")
		return nil, utils.NewParseFailedError()
	}

	info.Formats = selector.Select(encodings)
	if info.Formats == nil {
		logger.WithField("encodings", len(encodings)).Warn("No usable encodings")
		return nil, utils.NewNoFormatsError()
	}
	return info, nil
}

func resultLabel(err error) string {
	if appErr, ok := utils.AsAppError(err); ok {
		switch appErr.Code {
		case utils.ErrorCodeExtractionTimeout:
			return "timeout"
		case utils.ErrorCodeParseFailed:
			return "parse_failed"
		case utils.ErrorCodeNoFormats:
			return "no_formats"
		}
		return "failed"
	}
	return "cancelled"
}

type rawInfo struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Thumbnail string      `json:"thumbnail"`
	Duration  *float64    `json:"duration"`
	Uploader  *string     `json:"uploader"`
	URL       string      `json:"url"`
	Ext       string      `json:"ext"`
	Width     *float64    `json:"width"`
	Height    *float64    `json:"height"`
	Formats   []rawFormat `json:"formats"`
}

// Numeric fields are floats because the tool occasionally reports them that way.
type rawFormat struct {
	FormatID       string   `json:"format_id"`
	URL            string   `json:"url"`
	Ext            string   `json:"ext"`
	Width          *float64 `json:"width"`
	Height         *float64 `json:"height"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	Protocol       string   `json:"protocol"`
}

func parseMetadata(stdout []byte) (*models.VideoInfo, []models.RawEncoding, error) {
	var raw rawInfo
	if err := json.Unmarshal(bytes.TrimSpace(stdout), &raw); err != nil {
		return nil, nil, err
	}

	info := &models.VideoInfo{
		ID:        raw.ID,
		Title:     raw.Title,
		Thumbnail: raw.Thumbnail,
		Uploader:  raw.Uploader,
	}
	if info.Title == "" {
		info.Title = DefaultTitle
	}
	if raw.Duration != nil && *raw.Duration > 0 {
		info.Duration = *raw.Duration
	}
	info.DurationLabel = utils.FormatDuration(info.Duration)

	encodings := make([]models.RawEncoding, 0, len(raw.Formats))
	for _, f := range raw.Formats {
		size := toInt64(f.Filesize)
		if size == nil {
			size = toInt64(f.FilesizeApprox)
		}
		encodings = append(encodings, models.RawEncoding{
			FormatID:   f.FormatID,
			URL:        f.URL,
			Ext:        f.Ext,
			Width:      toInt(f.Width),
			Height:     toInt(f.Height),
			VideoCodec: f.VCodec,
			AudioCodec: f.ACodec,
			Filesize:   size,
			Protocol:   f.Protocol,
		})
	}

	// Single-file extractions come back without a formats list.
	if len(encodings) == 0 && raw.URL != "" {
		encodings = append(encodings, models.RawEncoding{
			FormatID: "default",
			URL:      raw.URL,
			Ext:      raw.Ext,
			Width:    toInt(raw.Width),
			Height:   toInt(raw.Height),
		})
	}

	return info, encodings, nil
}

func toInt(v *float64) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

func toInt64(v *float64) *int64 {
	if v == nil {
		return nil
	}
	i := int64(*v)
	return &i
}
