// domain/video.go
package domain

import (
	"io"
	"time"
)

// ShortReferenceLimit is the length below which a reference is reported as short.
// Classification only; nothing downstream depends on it.
const ShortReferenceLimit = 100

type StrategyKind string

const (
	StrategyNativeSave      StrategyKind = "native_save"
	StrategyGenericEndpoint StrategyKind = "generic_endpoint"
)

// MediaFile is the immutable input of a pipeline run. Open is called once per
// encoding and the caller of Open closes the returned reader.
type MediaFile struct {
	Name     string
	Size     int64
	MIMEType string
	Open     func() (io.ReadCloser, error)
}

// EncodedPayload is the data-URI form of a MediaFile. Header is everything
// before the first comma; Segment is the base64 payload transports send.
type EncodedPayload struct {
	DataURI string
	Header  string
	Segment string
	Size    int64
	Digest  []byte
}

// UploadMetadata describes the source file of an upload.
type UploadMetadata struct {
	FileName  string `json:"file_name"`
	FileSize  int64  `json:"file_size"`
	FileType  string `json:"file_type"`
	Extension string `json:"extension,omitempty"`
}

// UploadAttempt records one strategy invocation.
type UploadAttempt struct {
	Strategy StrategyKind `json:"strategy"`
	Success  bool         `json:"success"`
	Error    string       `json:"error,omitempty"`
}

type UploadOutcome struct {
	Success          bool            `json:"success"`
	Reference        string          `json:"reference,omitempty"`
	StrategyUsed     StrategyKind    `json:"strategy_used,omitempty"`
	GeneratedName    string          `json:"generated_name,omitempty"`
	OwnerLabel       string          `json:"owner_label,omitempty"`
	ReferenceLength  int             `json:"reference_length,omitempty"`
	IsShortReference bool            `json:"is_short_reference"`
	Attempts         []UploadAttempt `json:"attempts,omitempty"`
	Err              error           `json:"-"`
	Error            string          `json:"error,omitempty"`
	ErrorKind        ErrorKind       `json:"error_kind,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
	UploadMetadata
}

// Fail marks the outcome as failed with err.
func (o *UploadOutcome) Fail(err error) {
	o.Success = false
	o.Reference = ""
	o.StrategyUsed = ""
	o.Err = err
	o.Error = err.Error()
	o.ErrorKind = KindOf(err)
}

// IsShortReference reports whether ref is shorter than ShortReferenceLimit.
func IsShortReference(ref string) bool {
	return len(ref) < ShortReferenceLimit
}

// Injection is a structured instruction inserted into a recognition request.
type Injection struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	Position   string `json:"position"`
	Depth      int    `json:"depth"`
	ShouldScan bool   `json:"should_scan"`
}

type RecognitionRequest struct {
	Reference    string      `json:"video"`
	Prompt       string      `json:"prompt"`
	Injects      []Injection `json:"injects"`
	ShouldStream bool        `json:"should_stream"`
}

type RecognitionOutcome struct {
	Success     bool      `json:"success"`
	Description string    `json:"description,omitempty"`
	Prompt      string    `json:"prompt"`
	Reference   string    `json:"reference"`
	Err         error     `json:"-"`
	Error       string    `json:"error,omitempty"`
	ErrorKind   ErrorKind `json:"error_kind,omitempty"`
}

// Fail marks the outcome as failed with err.
func (o *RecognitionOutcome) Fail(err error) {
	o.Success = false
	o.Description = ""
	o.Err = err
	o.Error = err.Error()
	o.ErrorKind = KindOf(err)
}

// PipelineResult merges an upload with its optional recognition. Success is
// the upload's success; AIRecognition is nil when recognition was not run.
type PipelineResult struct {
	UploadOutcome
	AIRecognition *RecognitionOutcome `json:"ai_recognition"`
	CompletedAt   time.Time           `json:"completed_at"`
}

// ProcessOptions controls a pipeline run. A nil EnableAI means enabled.
type ProcessOptions struct {
	EnableAI *bool
	Prompt   string
}

// RecognitionEnabled reports whether recognition should run.
func (o ProcessOptions) RecognitionEnabled() bool {
	return o.EnableAI == nil || *o.EnableAI
}

// ProcessingRecord is the persisted audit row of one pipeline run.
type ProcessingRecord struct {
	ID                 int
	Owner              string
	OriginalFilename   string
	Reference          string
	Strategy           StrategyKind
	Success            bool
	ErrorMessage       string
	RecognitionSuccess bool
	RecognitionSummary string
	CreatedAt          time.Time
}

// VideoProcessedEvent is published after every pipeline run.
type VideoProcessedEvent struct {
	ID                 string       `json:"id"`
	Owner              string       `json:"owner"`
	OriginalFilename   string       `json:"original_filename"`
	Reference          string       `json:"reference,omitempty"`
	Strategy           StrategyKind `json:"strategy,omitempty"`
	Success            bool         `json:"success"`
	Error              string       `json:"error,omitempty"`
	RecognitionRan     bool         `json:"recognition_ran"`
	RecognitionSuccess bool         `json:"recognition_success"`
	Description        string       `json:"description,omitempty"`
	CompletedAt        time.Time    `json:"completed_at"`
}

// RecognitionJob is a queued recognize-only request.
type RecognitionJob struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Reference string    `json:"reference"`
	Prompt    string    `json:"prompt,omitempty"`
	QueuedAt  time.Time `json:"queued_at"`
}
