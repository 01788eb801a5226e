// usecase/validate_video.go
package usecase

import (
	"path/filepath"
	"strings"

	"github.com/vitovidale/video-recognition-service/domain"
)

const videoMIMEPrefix = "video/"

var (
	DefaultSupportedFormats = []string{"mp4", "webm", "ogg", "avi", "mov", "mkv"}
	DefaultMaxVideoSize     = int64(100 * 1024 * 1024)
)

// Validator checks a MediaFile before any I/O is done with it.
type Validator struct {
	SupportedFormats []string
	MaxSize          int64
}

func NewValidator(formats []string, maxSize int64) *Validator {
	if len(formats) == 0 {
		formats = DefaultSupportedFormats
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxVideoSize
	}
	normalized := make([]string, 0, len(formats))
	for _, f := range formats {
		normalized = append(normalized, strings.ToLower(strings.TrimPrefix(f, ".")))
	}
	return &Validator{SupportedFormats: normalized, MaxSize: maxSize}
}

func (v *Validator) Validate(file domain.MediaFile) error {
	if !IsVideoFile(file.MIMEType) {
		return domain.ValidationError("not a video file: %q", file.MIMEType)
	}
	if file.Size > v.MaxSize {
		return domain.ValidationError("video file too large: %d bytes, max %d MB", file.Size, v.MaxSize/1024/1024)
	}
	ext := Extension(file.Name)
	if !v.Supports(ext) {
		return domain.ValidationError("unsupported video format: %q", ext)
	}
	if file.Open == nil {
		return domain.ValidationError("video file %q has no content", file.Name)
	}
	return nil
}

func (v *Validator) Supports(ext string) bool {
	for _, f := range v.SupportedFormats {
		if f == ext {
			return true
		}
	}
	return false
}

// MaxSizeMB is the ceiling in whole mebibytes.
func (v *Validator) MaxSizeMB() int64 {
	return v.MaxSize / 1024 / 1024
}

// IsVideoFile reports whether mimeType declares a video.
func IsVideoFile(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), videoMIMEPrefix)
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
