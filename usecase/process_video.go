// usecase/process_video.go
package usecase

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitovidale/video-recognition-service/domain"
)

const maxRecordedSummary = 2000

// ProcessVideoUseCase uploads a video and then, unless disabled, asks for an
// AI description of it. A failed recognition never fails the run.
type ProcessVideoUseCase struct {
	Upload    *UploadVideoUseCase
	Recognize *RecognizeVideoUseCase
	Repo      domain.ResultRepository
	Publisher domain.EventPublisher
	Logger    *zap.Logger
	Now       func() time.Time
}

func (uc *ProcessVideoUseCase) Execute(ctx context.Context, file domain.MediaFile, opts domain.ProcessOptions) domain.PipelineResult {
	logger := loggerOrNop(uc.Logger)
	now := uc.Now
	if now == nil {
		now = time.Now
	}

	logger.Info("processing video", zap.String("file", file.Name), zap.Bool("ai_enabled", opts.RecognitionEnabled()))
	upload, err := uc.Upload.Execute(ctx, UploadVideoInput{File: file})
	result := domain.PipelineResult{UploadOutcome: upload}
	if err != nil {
		result.CompletedAt = now()
		uc.finish(ctx, logger, result)
		return result
	}

	if opts.RecognitionEnabled() {
		recognition := uc.Recognize.Execute(ctx, upload.Reference, opts.Prompt)
		result.AIRecognition = &recognition
		if !recognition.Success {
			logger.Warn("video recognition failed, upload kept", zap.String("reference", upload.Reference), zap.Error(recognition.Err))
		}
	}
	result.CompletedAt = now()
	logger.Info("video processing completed", zap.String("file", file.Name), zap.String("reference", upload.Reference))
	uc.finish(ctx, logger, result)
	return result
}

// finish records and publishes result. Both are best effort.
func (uc *ProcessVideoUseCase) finish(ctx context.Context, logger *zap.Logger, result domain.PipelineResult) {
	if uc.Repo != nil {
		record := RecordFromResult(result)
		if err := uc.Repo.Save(ctx, &record); err != nil {
			logger.Error("failed to record video result", zap.String("file", result.FileName), zap.Error(err))
		}
	}
	if uc.Publisher != nil {
		if err := uc.Publisher.PublishVideoProcessed(ctx, EventFromResult(result)); err != nil {
			logger.Error("failed to publish video result", zap.String("file", result.FileName), zap.Error(err))
		}
	}
}

func RecordFromResult(result domain.PipelineResult) domain.ProcessingRecord {
	record := domain.ProcessingRecord{
		Owner:            result.OwnerLabel,
		OriginalFilename: result.FileName,
		Reference:        result.Reference,
		Strategy:         result.StrategyUsed,
		Success:          result.Success,
		ErrorMessage:     result.Error,
		CreatedAt:        result.CompletedAt,
	}
	if ai := result.AIRecognition; ai != nil {
		record.RecognitionSuccess = ai.Success
		record.RecognitionSummary = ai.Description
		if !ai.Success {
			record.RecognitionSummary = ai.Error
		}
		record.RecognitionSummary = truncateUTF8(record.RecognitionSummary, maxRecordedSummary)
	}
	return record
}

func EventFromResult(result domain.PipelineResult) domain.VideoProcessedEvent {
	event := domain.VideoProcessedEvent{
		ID:               uuid.NewString(),
		Owner:            result.OwnerLabel,
		OriginalFilename: result.FileName,
		Reference:        result.Reference,
		Strategy:         result.StrategyUsed,
		Success:          result.Success,
		Error:            result.Error,
		CompletedAt:      result.CompletedAt,
	}
	if ai := result.AIRecognition; ai != nil {
		event.RecognitionRan = true
		event.RecognitionSuccess = ai.Success
		event.Description = ai.Description
	}
	return event
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
