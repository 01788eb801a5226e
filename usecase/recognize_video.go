// usecase/recognize_video.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vitovidale/video-recognition-service/domain"
)

const (
	DefaultResponseLanguage = "English"

	injectionRole     = "system"
	injectionPosition = "in_chat"
)

// DefaultPrompt is the instruction used when a caller supplies no prompt.
func DefaultPrompt(language string) string {
	if strings.TrimSpace(language) == "" {
		language = DefaultResponseLanguage
	}
	return fmt.Sprintf("Analyze the content of this video. Describe the scenes, actions, objects "+
		"and any other important visual information you see. Answer in %s.", language)
}

// BuildRecognitionRequest embeds reference and prompt into a non-streaming
// request carrying a single system injection at depth 0.
func BuildRecognitionRequest(reference, prompt string) domain.RecognitionRequest {
	return domain.RecognitionRequest{
		Reference: reference,
		Prompt:    prompt,
		Injects: []domain.Injection{{
			Role:       injectionRole,
			Content:    prompt,
			Position:   injectionPosition,
			Depth:      0,
			ShouldScan: true,
		}},
		ShouldStream: false,
	}
}

// RecognizeVideoUseCase asks the recognition capability to describe an
// uploaded video. It never returns an error: failures are part of the outcome.
type RecognizeVideoUseCase struct {
	Resolver         domain.CapabilityResolver
	ResponseLanguage string
	Logger           *zap.Logger
	Metrics          domain.PipelineMetrics
}

func (uc *RecognizeVideoUseCase) Execute(ctx context.Context, reference, prompt string) domain.RecognitionOutcome {
	logger := loggerOrNop(uc.Logger)
	metrics := metricsOrNoop(uc.Metrics)

	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt(uc.ResponseLanguage)
	}
	outcome := domain.RecognitionOutcome{Prompt: prompt, Reference: reference}

	if strings.TrimSpace(reference) == "" {
		outcome.Fail(domain.ValidationError("video reference is required"))
		metrics.ObserveRecognition(outcome)
		return outcome
	}

	recognizer, ok := resolveCapability[domain.Recognizer](uc.Resolver, domain.CapabilityRecognize, logger, metrics)
	if !ok {
		outcome.Fail(domain.CapabilityUnavailableError(domain.CapabilityRecognize))
		logger.Warn("video recognition skipped", zap.String("reference", reference), zap.Error(outcome.Err))
		metrics.ObserveRecognition(outcome)
		return outcome
	}

	logger.Info("sending video recognition request", zap.String("reference", reference))
	description, err := invokeRecognizer(ctx, recognizer, BuildRecognitionRequest(reference, prompt))
	if err == nil && strings.TrimSpace(description) == "" {
		err = errors.New("empty recognition response")
	}
	if err != nil {
		outcome.Fail(domain.RecognitionError(err))
		logger.Warn("video recognition failed", zap.String("reference", reference), zap.Error(err))
		metrics.ObserveRecognition(outcome)
		return outcome
	}

	outcome.Success = true
	outcome.Description = description
	logger.Info("video recognition completed", zap.String("reference", reference), zap.Int("description_length", len(description)))
	metrics.ObserveRecognition(outcome)
	return outcome
}

func invokeRecognizer(ctx context.Context, r domain.Recognizer, req domain.RecognitionRequest) (desc string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("recognizer panicked: %v", p)
		}
	}()
	return r.Recognize(ctx, req)
}
