package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitovidale/video-recognition-service/domain"
)

func TestValidatorValidate(t *testing.T) {
	v := NewValidator(nil, 0)
	ok, _ := videoFile("clip.MP4", "video/mp4", []byte("data"))

	tests := []struct {
		name    string
		mutate  func(f *domain.MediaFile)
		wantErr string
	}{
		{"accepts supported video", func(*domain.MediaFile) {}, ""},
		{"rejects non-video mime", func(f *domain.MediaFile) { f.MIMEType = "image/png" }, "not a video file"},
		{"rejects empty mime", func(f *domain.MediaFile) { f.MIMEType = "" }, "not a video file"},
		{"rejects oversize", func(f *domain.MediaFile) { f.Size = DefaultMaxVideoSize + 1 }, "too large"},
		{"rejects unsupported extension", func(f *domain.MediaFile) { f.Name = "clip.flv" }, "unsupported video format"},
		{"rejects missing content", func(f *domain.MediaFile) { f.Open = nil }, "has no content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ok
			tt.mutate(&f)
			err := v.Validate(f)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatorAcceptsExactlyMaxSize(t *testing.T) {
	v := NewValidator([]string{".MP4"}, 10)
	f, _ := videoFile("a.mp4", "video/mp4", make([]byte, 10))
	assert.NoError(t, v.Validate(f))
	assert.Equal(t, []string{"mp4"}, v.SupportedFormats)
}

func TestInvalidFileNeverReachesCapabilities(t *testing.T) {
	native := &fakeNativeSaver{formats: []string{"mp4"}, ref: "/user/videos/a.mp4"}
	generic := &fakeUploader{ref: "/files/a.mp4"}
	resolver := newFakeResolver().
		with(domain.CapabilityNativeSave, native).
		with(domain.CapabilityGenericUpload, generic)
	uc := newUploadUseCase(resolver, nil)

	file, opens := videoFile("photo.png", "image/png", []byte("png"))
	outcome, err := uc.Execute(context.Background(), UploadVideoInput{File: file})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, outcome.Success)
	assert.Equal(t, domain.KindValidation, outcome.ErrorKind)
	assert.Zero(t, *opens)
	assert.Zero(t, native.calls)
	assert.Zero(t, generic.calls)
	assert.Empty(t, resolver.lookups)
}

func TestOversizeFileIsNotEncoded(t *testing.T) {
	generic := &fakeUploader{ref: "/files/a.mp4"}
	uc := newUploadUseCase(newFakeResolver().with(domain.CapabilityGenericUpload, generic), nil)
	uc.Validator = NewValidator(nil, 4)

	file, opens := videoFile("big.mp4", "video/mp4", []byte("12345"))
	_, err := uc.Execute(context.Background(), UploadVideoInput{File: file})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, *opens)
	assert.Zero(t, generic.calls)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "mp4", Extension("Clip.MP4"))
	assert.Equal(t, "gz", Extension("archive.tar.gz"))
	assert.Equal(t, "", Extension("noext"))
	assert.True(t, IsVideoFile("Video/WebM"))
	assert.False(t, IsVideoFile("application/octet-stream"))
}
