// usecase/upload_video.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vitovidale/video-recognition-service/domain"
)

// UploadExecutor runs upload strategies in order until one returns a reference.
type UploadExecutor struct {
	Logger  *zap.Logger
	Metrics domain.PipelineMetrics
	Now     func() time.Time
}

// Execute attempts strategies strictly one after another. A failed strategy
// is logged and the next one tried; only exhausting the list fails the upload.
func (e *UploadExecutor) Execute(ctx context.Context, payload domain.EncodedPayload, strategies []domain.StrategyKind, caps UploadCapabilities, id FileIdentity, meta domain.UploadMetadata) domain.UploadOutcome {
	logger := loggerOrNop(e.Logger)
	metrics := metricsOrNoop(e.Metrics)
	now := e.Now
	if now == nil {
		now = time.Now
	}

	outcome := domain.UploadOutcome{
		UploadMetadata: meta,
		GeneratedName:  id.FileName,
		OwnerLabel:     id.Owner,
	}
	outcome.Extension = id.Extension

	if len(strategies) == 0 {
		outcome.Fail(domain.NoCapabilityError())
		outcome.Timestamp = now()
		return outcome
	}

	var lastErr error
	for _, kind := range strategies {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		ref, err := runStrategy(ctx, kind, payload, caps, id)
		if err == nil && ref == "" {
			err = errors.New("empty reference returned")
		}
		metrics.ObserveUploadAttempt(kind, err == nil)
		if err != nil {
			logger.Warn("upload strategy failed",
				zap.String("strategy", string(kind)),
				zap.String("file", meta.FileName),
				zap.Error(err))
			outcome.Attempts = append(outcome.Attempts, domain.UploadAttempt{Strategy: kind, Error: err.Error()})
			lastErr = err
			continue
		}

		outcome.Attempts = append(outcome.Attempts, domain.UploadAttempt{Strategy: kind, Success: true})
		outcome.Success = true
		outcome.Reference = ref
		outcome.StrategyUsed = kind
		outcome.ReferenceLength = len(ref)
		outcome.IsShortReference = domain.IsShortReference(ref)
		outcome.Timestamp = now()
		logger.Info("video uploaded",
			zap.String("strategy", string(kind)),
			zap.String("file", meta.FileName),
			zap.String("reference", ref),
			zap.Int("reference_length", len(ref)))
		return outcome
	}

	outcome.Fail(domain.UploadExhaustedError(len(outcome.Attempts), lastErr))
	outcome.Timestamp = now()
	return outcome
}

func runStrategy(ctx context.Context, kind domain.StrategyKind, payload domain.EncodedPayload, caps UploadCapabilities, id FileIdentity) (ref string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", kind, r)
		}
	}()

	switch kind {
	case domain.StrategyNativeSave:
		if caps.NativeSave == nil {
			return "", fmt.Errorf("%s not resolved", kind)
		}
		return caps.NativeSave.SaveBase64(ctx, payload.Segment, id.Owner, id.Prefix, id.Extension)
	case domain.StrategyGenericEndpoint:
		if caps.Generic == nil {
			return "", fmt.Errorf("%s not resolved", kind)
		}
		return caps.Generic.Upload(ctx, id.FileName, payload.Segment)
	default:
		return "", fmt.Errorf("unknown upload strategy %q", kind)
	}
}

type UploadVideoInput struct {
	File domain.MediaFile
}

// UploadVideoUseCase validates, encodes and uploads a video, returning its reference.
type UploadVideoUseCase struct {
	Validator *Validator
	Encoder   *Encoder
	Resolver  domain.CapabilityResolver
	Executor  *UploadExecutor
	Names     *NameGenerator
	Logger    *zap.Logger
	Metrics   domain.PipelineMetrics
}

// Execute always returns a populated outcome; err is the outcome's error.
func (uc *UploadVideoUseCase) Execute(ctx context.Context, input UploadVideoInput) (domain.UploadOutcome, error) {
	logger := loggerOrNop(uc.Logger)
	metrics := metricsOrNoop(uc.Metrics)
	file := input.File
	outcome := domain.UploadOutcome{
		UploadMetadata: domain.UploadMetadata{
			FileName:  file.Name,
			FileSize:  file.Size,
			FileType:  file.MIMEType,
			Extension: Extension(file.Name),
		},
	}
	fail := func(err error) (domain.UploadOutcome, error) {
		outcome.Fail(err)
		outcome.Timestamp = time.Now()
		metrics.ObserveUpload(outcome)
		logger.Error("video upload failed", zap.String("file", file.Name), zap.Error(err))
		return outcome, err
	}

	logger.Info("starting video upload", zap.String("file", file.Name), zap.Int64("size", file.Size))
	if err := uc.Validator.Validate(file); err != nil {
		return fail(err)
	}

	payload, err := uc.Encoder.Encode(ctx, file)
	if err != nil {
		return fail(err)
	}

	caps := resolveUploadCapabilities(uc.Resolver, logger, metrics)
	strategies := SelectStrategies(outcome.Extension, caps)
	if len(strategies) == 0 {
		return fail(domain.NoCapabilityError())
	}

	helpers := resolveNamingHelpers(uc.Resolver, logger, metrics)
	id := uc.Names.generate(ctx, file, payload, helpers)

	outcome = uc.Executor.Execute(ctx, payload, strategies, caps, id, outcome.UploadMetadata)
	metrics.ObserveUpload(outcome)
	if !outcome.Success {
		logger.Error("video upload failed", zap.String("file", file.Name), zap.Error(outcome.Err))
		return outcome, outcome.Err
	}
	return outcome, nil
}
