// domain/interfaces.go
package domain

import "context"

type CapabilityName string

const (
	CapabilityNativeSave     CapabilityName = "native_save"
	CapabilityGenericUpload  CapabilityName = "generic_upload"
	CapabilityRecognize      CapabilityName = "recognize"
	CapabilityContentHash    CapabilityName = "content_hash"
	CapabilityExtensionInfer CapabilityName = "extension_infer"
	CapabilityOwnerLabel     CapabilityName = "owner_label"
)

// AllCapabilities lists every capability name in probe order.
var AllCapabilities = []CapabilityName{
	CapabilityNativeSave,
	CapabilityGenericUpload,
	CapabilityRecognize,
	CapabilityContentHash,
	CapabilityExtensionInfer,
	CapabilityOwnerLabel,
}

type ResolutionStatus string

const (
	StatusAvailable   ResolutionStatus = "available"
	StatusAbsent      ResolutionStatus = "absent"
	StatusUnreachable ResolutionStatus = "unreachable"
)

// Resolution is the result of looking up a capability. FirstUnreachable is
// set on the first unreachable lookup of a name so callers warn only once.
type Resolution struct {
	Name             CapabilityName
	Capability       any
	Status           ResolutionStatus
	Err              error
	FirstUnreachable bool
}

func (r Resolution) Available() bool {
	return r.Status == StatusAvailable && r.Capability != nil
}

type CapabilityResolver interface {
	Resolve(name CapabilityName) Resolution
}

// NativeSaver stores a base64 payload through the host's own media pipeline.
type NativeSaver interface {
	SaveBase64(ctx context.Context, segment, ownerLabel, namePrefix, extension string) (string, error)
	Supports(extension string) bool
}

// GenericUploader posts a named base64 payload to the host's upload endpoint.
type GenericUploader interface {
	Upload(ctx context.Context, name, segment string) (string, error)
}

type Recognizer interface {
	Recognize(ctx context.Context, req RecognitionRequest) (string, error)
}

type ContentHasher interface {
	Hash(data []byte) string
}

type ExtensionInferrer interface {
	InferExtension(mimeType string) string
}

type OwnerLabeler interface {
	OwnerLabel(ctx context.Context) string
}

type ResultRepository interface {
	Save(ctx context.Context, record *ProcessingRecord) error
	FindByOwner(ctx context.Context, owner string) ([]ProcessingRecord, error)
}

type EventPublisher interface {
	PublishVideoProcessed(ctx context.Context, event VideoProcessedEvent) error
}

type JobQueue interface {
	PublishRecognitionJob(ctx context.Context, job RecognitionJob) error
	ConsumeRecognitionJobs(ctx context.Context, handler func(context.Context, RecognitionJob) error) error
}

// PipelineMetrics receives pipeline observations.
type PipelineMetrics interface {
	ObserveUploadAttempt(strategy StrategyKind, success bool)
	ObserveUpload(outcome UploadOutcome)
	ObserveRecognition(outcome RecognitionOutcome)
	ObserveResolution(res Resolution)
}
