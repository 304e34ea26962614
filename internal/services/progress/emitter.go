// Package progress turns one metadata extraction into an ordered stream of step events
// ending in exactly one done or error event.
package progress

import (
	"context"
	"errors"

	"github.com/waseem196/down-fb/internal/models"
	"github.com/waseem196/down-fb/internal/services/ytdlp"
	"github.com/waseem196/down-fb/internal/utils"
)

// Extractor is the part of ytdlp.Extractor the emitter drives.
type Extractor interface {
	Extract(ctx context.Context, link string, onProgress func(ytdlp.Checkpoint)) (*models.VideoInfo, error)
}

type Emitter struct {
	extractor Extractor
}

func NewEmitter(extractor Extractor) *Emitter {
	return &Emitter{extractor: extractor}
}

// Stream starts the extraction and returns its events. The channel is closed after the
// terminal event, or early when ctx is cancelled, which also stops the extraction.
func (e *Emitter) Stream(ctx context.Context, link string) <-chan models.ProgressEvent {
	events := make(chan models.ProgressEvent, 1)

	go func() {
		defer close(events)

		send := func(evt models.ProgressEvent) bool {
			select {
			case events <- evt:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(models.StepEvent(models.StepValidated)) {
			return
		}

		info, err := e.extractor.Extract(ctx, link, func(cp ytdlp.Checkpoint) {
			switch cp {
			case ytdlp.CheckpointSpawned:
				send(models.StepEvent(models.StepSpawned))
			case ytdlp.CheckpointReceiving:
				send(models.StepEvent(models.StepReceiving))
			}
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			send(errorEvent(ctx, err))
			return
		}

		if !send(models.StepEvent(models.StepParsed)) {
			return
		}
		send(models.DoneEvent(info))
	}()

	return events
}

func errorEvent(ctx context.Context, err error) models.ProgressEvent {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return models.ErrorEvent(string(appErr.Code), appErr.Message)
	}
	utils.LogError(ctx, "Unexpected extraction error", err)
	internal := utils.NewInternalError()
	return models.ErrorEvent(string(internal.Code), internal.Message)
}
