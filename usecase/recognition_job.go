// usecase/recognition_job.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitovidale/video-recognition-service/domain"
)

var ErrQueueUnavailable = errors.New("recognition queue not configured")

// RecognitionJobUseCase queues recognize-only requests and runs them when
// they are consumed.
type RecognitionJobUseCase struct {
	Queue     domain.JobQueue
	Recognize *RecognizeVideoUseCase
	Publisher domain.EventPublisher
	Logger    *zap.Logger
}

func (uc *RecognitionJobUseCase) Enqueue(ctx context.Context, owner, reference, prompt string) (domain.RecognitionJob, error) {
	if uc.Queue == nil {
		return domain.RecognitionJob{}, ErrQueueUnavailable
	}
	if strings.TrimSpace(reference) == "" {
		return domain.RecognitionJob{}, domain.ValidationError("video reference is required")
	}
	job := domain.RecognitionJob{
		ID:        uuid.NewString(),
		Owner:     owner,
		Reference: reference,
		Prompt:    prompt,
		QueuedAt:  time.Now(),
	}
	if err := uc.Queue.PublishRecognitionJob(ctx, job); err != nil {
		return domain.RecognitionJob{}, err
	}
	return job, nil
}

// Handle runs one job. A failed recognition is published, not returned: only
// publishing errors fail the job.
func (uc *RecognitionJobUseCase) Handle(ctx context.Context, job domain.RecognitionJob) error {
	logger := loggerOrNop(uc.Logger)
	outcome := uc.Recognize.Execute(ctx, job.Reference, job.Prompt)
	logger.Info("recognition job finished", zap.String("id", job.ID), zap.Bool("success", outcome.Success))
	if uc.Publisher == nil {
		return nil
	}
	return uc.Publisher.PublishVideoProcessed(ctx, domain.VideoProcessedEvent{
		ID:                 job.ID,
		Owner:              job.Owner,
		Reference:          job.Reference,
		Success:            true,
		RecognitionRan:     true,
		RecognitionSuccess: outcome.Success,
		Description:        outcome.Description,
		Error:              outcome.Error,
		CompletedAt:        time.Now(),
	})
}

// Run consumes jobs until ctx ends.
func (uc *RecognitionJobUseCase) Run(ctx context.Context) error {
	if uc.Queue == nil {
		return ErrQueueUnavailable
	}
	return uc.Queue.ConsumeRecognitionJobs(ctx, uc.Handle)
}
