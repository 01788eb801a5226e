// usecase/check_status.go
package usecase

import (
	"go.uber.org/zap"

	"github.com/vitovidale/video-recognition-service/domain"
)

type ServiceStatus struct {
	ServiceName      string                                            `json:"service_name"`
	Version          string                                            `json:"version"`
	Ready            bool                                              `json:"ready"`
	RecognitionReady bool                                              `json:"recognition_ready"`
	Capabilities     map[domain.CapabilityName]domain.ResolutionStatus `json:"capabilities"`
	SupportedFormats []string                                          `json:"supported_formats"`
	MaxVideoSize     int64                                             `json:"max_video_size"`
	MaxVideoSizeMB   int64                                             `json:"max_video_size_mb"`
}

// StatusUseCase reports which capabilities currently resolve. It does no I/O
// beyond the resolver's own lookups.
type StatusUseCase struct {
	Resolver    domain.CapabilityResolver
	Validator   *Validator
	ServiceName string
	Version     string
	Logger      *zap.Logger
}

func (uc *StatusUseCase) Check() ServiceStatus {
	logger := loggerOrNop(uc.Logger)
	status := ServiceStatus{
		ServiceName:      uc.ServiceName,
		Version:          uc.Version,
		Capabilities:     make(map[domain.CapabilityName]domain.ResolutionStatus, len(domain.AllCapabilities)),
		SupportedFormats: append([]string(nil), uc.Validator.SupportedFormats...),
		MaxVideoSize:     uc.Validator.MaxSize,
		MaxVideoSizeMB:   uc.Validator.MaxSizeMB(),
	}
	for _, name := range domain.AllCapabilities {
		st := domain.StatusAbsent
		if uc.Resolver != nil {
			res := uc.Resolver.Resolve(name)
			st = res.Status
			if res.FirstUnreachable {
				logger.Warn("capability unreachable", zap.String("capability", string(name)), zap.Error(res.Err))
			}
		}
		status.Capabilities[name] = st
	}
	status.Ready = status.Capabilities[domain.CapabilityNativeSave] == domain.StatusAvailable ||
		status.Capabilities[domain.CapabilityGenericUpload] == domain.StatusAvailable
	status.RecognitionReady = status.Capabilities[domain.CapabilityRecognize] == domain.StatusAvailable
	return status
}
