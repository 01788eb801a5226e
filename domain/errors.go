// domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation            ErrorKind = "validation"
	KindEncoding              ErrorKind = "encoding"
	KindNoCapability          ErrorKind = "no_capability"
	KindUploadExhausted       ErrorKind = "upload_exhausted"
	KindCapabilityUnavailable ErrorKind = "capability_unavailable"
	KindRecognition           ErrorKind = "recognition"
)

// Sentinels for errors.Is. A *PipelineError matches the sentinel of its kind.
var (
	ErrValidation            = errors.New("invalid video file")
	ErrEncoding              = errors.New("failed to encode video file")
	ErrNoCapability          = errors.New("no upload capability available")
	ErrUploadExhausted       = errors.New("all upload strategies failed")
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrRecognition           = errors.New("video recognition failed")
)

var sentinels = map[ErrorKind]error{
	KindValidation:            ErrValidation,
	KindEncoding:              ErrEncoding,
	KindNoCapability:          ErrNoCapability,
	KindUploadExhausted:       ErrUploadExhausted,
	KindCapabilityUnavailable: ErrCapabilityUnavailable,
	KindRecognition:           ErrRecognition,
}

// PipelineError carries the kind of a pipeline failure and its cause.
type PipelineError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *PipelineError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = sentinels[e.Kind].Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *PipelineError) Unwrap() error { return e.Err }

func (e *PipelineError) Is(target error) bool {
	return sentinels[e.Kind] == target
}

func newError(kind ErrorKind, err error, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func ValidationError(format string, args ...any) error {
	return newError(KindValidation, nil, format, args...)
}

func EncodingError(err error) error {
	return &PipelineError{Kind: KindEncoding, Err: err}
}

func NoCapabilityError() error {
	return &PipelineError{Kind: KindNoCapability}
}

// UploadExhaustedError wraps the cause of the last failed strategy.
func UploadExhaustedError(attempts int, last error) error {
	return newError(KindUploadExhausted, last, "all %d upload strategies failed", attempts)
}

func CapabilityUnavailableError(name CapabilityName) error {
	return newError(KindCapabilityUnavailable, nil, "capability %s unavailable", name)
}

func RecognitionError(err error) error {
	return &PipelineError{Kind: KindRecognition, Err: err}
}

// KindOf returns the kind of err, or "" when err is not a pipeline error.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
