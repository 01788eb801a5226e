// usecase/capabilities.go
package usecase

import (
	"go.uber.org/zap"

	"github.com/vitovidale/video-recognition-service/domain"
)

// UploadCapabilities are the upload mechanisms resolved for one run.
type UploadCapabilities struct {
	NativeSave domain.NativeSaver
	Generic    domain.GenericUploader
}

// namingHelpers are optional capabilities used to build file identifiers.
type namingHelpers struct {
	hasher   domain.ContentHasher
	inferrer domain.ExtensionInferrer
	owner    domain.OwnerLabeler
}

// resolveCapability looks up name and asserts it to T. Unreachable
// capabilities are logged at warn level the first time only.
func resolveCapability[T any](resolver domain.CapabilityResolver, name domain.CapabilityName, logger *zap.Logger, metrics domain.PipelineMetrics) (T, bool) {
	var zero T
	if resolver == nil {
		return zero, false
	}
	res := resolver.Resolve(name)
	metrics.ObserveResolution(res)

	switch res.Status {
	case domain.StatusUnreachable:
		if res.FirstUnreachable {
			logger.Warn("capability unreachable", zap.String("capability", string(name)), zap.Error(res.Err))
		} else {
			logger.Debug("capability still unreachable", zap.String("capability", string(name)))
		}
		return zero, false
	case domain.StatusAbsent:
		return zero, false
	}

	c, ok := res.Capability.(T)
	if !ok {
		logger.Warn("capability has unexpected type", zap.String("capability", string(name)))
		return zero, false
	}
	return c, true
}

func resolveUploadCapabilities(resolver domain.CapabilityResolver, logger *zap.Logger, metrics domain.PipelineMetrics) UploadCapabilities {
	var caps UploadCapabilities
	if native, ok := resolveCapability[domain.NativeSaver](resolver, domain.CapabilityNativeSave, logger, metrics); ok {
		caps.NativeSave = native
	}
	if generic, ok := resolveCapability[domain.GenericUploader](resolver, domain.CapabilityGenericUpload, logger, metrics); ok {
		caps.Generic = generic
	}
	return caps
}

func resolveNamingHelpers(resolver domain.CapabilityResolver, logger *zap.Logger, metrics domain.PipelineMetrics) namingHelpers {
	var h namingHelpers
	h.hasher, _ = resolveCapability[domain.ContentHasher](resolver, domain.CapabilityContentHash, logger, metrics)
	h.inferrer, _ = resolveCapability[domain.ExtensionInferrer](resolver, domain.CapabilityExtensionInfer, logger, metrics)
	h.owner, _ = resolveCapability[domain.OwnerLabeler](resolver, domain.CapabilityOwnerLabel, logger, metrics)
	return h
}

type noopMetrics struct{}

func (noopMetrics) ObserveUploadAttempt(domain.StrategyKind, bool) {}
func (noopMetrics) ObserveUpload(domain.UploadOutcome) {}
func (noopMetrics) ObserveRecognition(domain.RecognitionOutcome) {}
func (noopMetrics) ObserveResolution(domain.Resolution) {}

func metricsOrNoop(m domain.PipelineMetrics) domain.PipelineMetrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
