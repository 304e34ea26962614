// Package materializer has the extraction tool write a single playable file into a
// scratch workspace and streams it back, removing the workspace when the stream ends.
package materializer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/remeh/sizedwaitgroup"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/waseem196/down-fb/internal/metrics"
	"github.com/waseem196/down-fb/internal/services/ytdlp"
	"github.com/waseem196/down-fb/internal/utils"
)

const (
	maxProgressBytes   = 64 << 10
	maxDiagnosticBytes = 64 << 10
)

var knownMimeTypes = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"mov":  "video/quicktime",
}

type Config struct {
	ScratchRoot   string
	SocketTimeout int
	CookiesPath   string
	FFmpegPath    string
	// MaxConcurrent caps downloads holding a workspace at once, streaming included.
	MaxConcurrent int
}

type Materializer struct {
	invoker ytdlp.Invoker
	fs      afero.Fs
	config  Config
	metrics *metrics.Metrics
	slots   sizedwaitgroup.SizedWaitGroup
	live    *liveSet
}

func New(invoker ytdlp.Invoker, fs afero.Fs, cfg Config, m *metrics.Metrics) *Materializer {
	if cfg.SocketTimeout <= 0 {
		cfg.SocketTimeout = 30
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Materializer{
		invoker: invoker,
		fs:      fs,
		config:  cfg,
		metrics: m,
		slots:   sizedwaitgroup.New(cfg.MaxConcurrent),
		live:    newLiveSet(),
	}
}

// CleanupOrphans sweeps stale workspaces under the scratch root, skipping any
// that a running or streaming download still owns.
func (m *Materializer) CleanupOrphans(maxAge time.Duration) (int, error) {
	return CleanupOrphans(m.fs, m.config.ScratchRoot, maxAge, m.live.contains)
}

// Wait blocks until every outstanding download has been streamed and closed.
func (m *Materializer) Wait() {
	m.slots.Wait()
}

// FormatExpression builds the tool's format selector, tried left to right. A positive
// maxHeight caps the first three tiers; the last two ignore it so something is always found.
func FormatExpression(maxHeight int) string {
	h := ""
	if maxHeight > 0 {
		h = fmt.Sprintf("[height<=%d]", maxHeight)
	}
	return strings.Join([]string{
		"bestvideo[ext=mp4]" + h + "+bestaudio[ext=m4a]",
		"bestvideo" + h + "+bestaudio",
		"best[vcodec!=none][acodec!=none][ext=mp4]" + h,
		"best[vcodec!=none][acodec!=none]",
		"best",
	}, "/")
}

// Args builds the download invocation writing into ws.
func (m *Materializer) Args(link string, maxHeight int, ws *Workspace) []string {
	args := []string{
		"-f", FormatExpression(maxHeight),
		"--merge-output-format", "mp4",
		"--no-playlist",
		"--no-warnings",
		"--socket-timeout", strconv.Itoa(m.config.SocketTimeout),
		"-o", ws.OutputTemplate(),
	}
	if m.config.FFmpegPath != "" {
		args = append(args, "--ffmpeg-location", m.config.FFmpegPath)
	}
	if m.config.CookiesPath != "" {
		args = append(args, "--cookies", m.config.CookiesPath)
	}
	return append(args, link)
}

// Download is a materialized file ready to stream. Closing Body removes the workspace.
type Download struct {
	Body     io.ReadCloser
	Size     int64
	MimeType string
	Ext      string
}

// Materialize downloads link into a fresh workspace. The workspace is gone by the time an
// error is returned; on success it lives until Body is closed. Callers beyond
// MaxConcurrent wait for a slot until ctx is done.
func (m *Materializer) Materialize(ctx context.Context, link string, maxHeight int) (*Download, error) {
	logger := utils.ComponentLogger(ctx, "materializer").WithField("url", link)

	if err := m.slots.AddWithContext(ctx); err != nil {
		logger.Info("Download abandoned while waiting for a slot")
		m.metrics.IncrementDownloads("cancelled")
		return nil, err
	}

	ws, err := NewWorkspace(m.fs, m.config.ScratchRoot, m.metrics)
	if err != nil {
		m.slots.Done()
		logger.WithError(err).Error("Failed to create scratch workspace")
		m.metrics.IncrementDownloads("failed")
		return nil, utils.NewInternalError()
	}
	dir := ws.Dir()
	m.live.add(dir)
	ws.onCleanup = func() { m.live.remove(dir) }
	logger = logger.WithField("workspace", dir)

	download, err := m.materialize(ctx, link, maxHeight, ws, logger)
	if err != nil {
		if cleanupErr := ws.Cleanup(); cleanupErr != nil {
			logger.WithError(cleanupErr).Warn("Failed to remove workspace")
		}
		m.slots.Done()
		return nil, err
	}
	return download, nil
}

func (m *Materializer) materialize(ctx context.Context, link string, maxHeight int, ws *Workspace, logger *logrus.Entry) (*Download, error) {
	started := time.Now()
	logger.WithField("max_height", maxHeight).Info("Starting download")

	result, err := ytdlp.Run(ctx, m.invoker, m.Args(link, maxHeight, ws), ytdlp.RunOptions{
		StdoutLimit: maxProgressBytes,
		StderrLimit: maxDiagnosticBytes,
	})
	if ctx.Err() != nil {
		logger.Info("Download abandoned by caller")
		m.metrics.IncrementDownloads("cancelled")
		return nil, ctx.Err()
	}
	if err != nil {
		logger.WithError(err).Error("Failed to run download tool")
		m.metrics.IncrementDownloads("failed")
		return nil, utils.NewDownloadFailedError(err.Error())
	}
	if result.ExitCode != 0 {
		diagnostic := strings.TrimSpace(result.Stderr)
		logger.WithFields(logrus.Fields{
			"exit_code": result.ExitCode,
			"stderr":    diagnostic,
		}).Warn("Download tool exited with error")
		m.metrics.IncrementDownloads("failed")
		return nil, utils.NewDownloadFailedError(diagnostic)
	}

	path, info, err := ws.OutputFile()
	if err != nil {
		logger.WithError(err).Warn("Download produced no output file")
		m.metrics.IncrementDownloads("no_output")
		return nil, utils.NewNoOutputProducedError()
	}

	file, err := m.fs.Open(path)
	if err != nil {
		logger.WithError(err).Error("Failed to open output file")
		m.metrics.IncrementDownloads("failed")
		return nil, utils.NewInternalError()
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	mimeType, err := detectMimeType(file, ext)
	if err != nil {
		file.Close()
		logger.WithError(err).Error("Failed to inspect output file")
		m.metrics.IncrementDownloads("failed")
		return nil, utils.NewInternalError()
	}

	logger.WithFields(logrus.Fields{
		"file":      filepath.Base(path),
		"size":      info.Size(),
		"mime_type": mimeType,
		"duration":  time.Since(started).String(),
	}).Info("Download materialized")

	return &Download{
		Body:     &stream{ctx: ctx, file: file, ws: ws, release: m.slots.Done, metrics: m.metrics, logger: logger},
		Size:     info.Size(),
		MimeType: mimeType,
		Ext:      ext,
	}, nil
}

// detectMimeType maps well-known containers by extension and sniffs the rest.
// The file is rewound afterwards.
func detectMimeType(file afero.File, ext string) (string, error) {
	if mimeType, ok := knownMimeTypes[strings.ToLower(ext)]; ok {
		return mimeType, nil
	}

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to sniff content type: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind output file: %w", err)
	}
	return detected.String(), nil
}

// stream reads the output file and removes the workspace on Close.
// Reads fail once ctx is done so a disconnected client stops the copy promptly.
type stream struct {
	ctx     context.Context
	file    afero.File
	ws      *Workspace
	release func()
	metrics *metrics.Metrics
	logger  *logrus.Entry

	read      int64
	completed bool
	closeOnce sync.Once
	closeErr  error
}

func (s *stream) Read(p []byte) (int, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.file.Read(p)
	s.read += int64(n)
	if errors.Is(err, io.EOF) {
		s.completed = true
	}
	return n, err
}

func (s *stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.file.Close()
		if err := s.ws.Cleanup(); err != nil {
			s.logger.WithError(err).Warn("Failed to remove workspace")
			if s.closeErr == nil {
				s.closeErr = err
			}
		}
		s.release()

		result := "success"
		if !s.completed {
			result = "cancelled"
		}
		s.metrics.IncrementDownloads(result)
		s.metrics.AddDownloadBytes(s.read)
		s.logger.WithFields(logrus.Fields{
			"bytes":  s.read,
			"result": result,
		}).Info("Download stream closed")
	})
	return s.closeErr
}
