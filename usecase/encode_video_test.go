package usecase

import (
	"context"
	"encoding/base64"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vitovidale/video-recognition-service/domain"
)

func TestEncodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 4096).Draw(t, "data")
		file, _ := videoFile("clip.webm", "video/webm", data)

		payload, err := (&Encoder{}).Encode(context.Background(), file)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if payload.Header != "data:video/webm;base64" {
			t.Fatalf("unexpected header %q", payload.Header)
		}
		decoded, err := base64.StdEncoding.DecodeString(payload.Segment)
		if err != nil {
			t.Fatalf("segment is not base64: %v", err)
		}
		if len(decoded) != len(data) || payload.Size != int64(len(data)) {
			t.Fatalf("decoded %d bytes, size %d, want %d", len(decoded), payload.Size, len(data))
		}
		if string(decoded) != string(data) {
			t.Fatal("decoded bytes differ")
		}
	})
}

func TestEncodeDefaultsMIMEType(t *testing.T) {
	file, _ := videoFile("clip.mp4", "", []byte("abc"))
	payload, err := (&Encoder{}).Encode(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "data:application/octet-stream;base64,YWJj", payload.DataURI)
	assert.Equal(t, "YWJj", payload.Segment)
}

func TestEncodeOpenFailure(t *testing.T) {
	_, err := (&Encoder{}).Encode(context.Background(), failingFile("clip.mp4"))
	assert.ErrorIs(t, err, domain.ErrEncoding)
	assert.Contains(t, err.Error(), "permission denied")
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestEncodeReadFailure(t *testing.T) {
	file := domain.MediaFile{
		Name:     "clip.mp4",
		Size:     5,
		MIMEType: "video/mp4",
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(brokenReader{}), nil },
	}
	_, err := (&Encoder{}).Encode(context.Background(), file)
	assert.ErrorIs(t, err, domain.ErrEncoding)
}

func TestEncodeRejectsContentOverLimit(t *testing.T) {
	file, _ := videoFile("clip.mp4", "video/mp4", []byte("123456"))
	file.Size = 2
	_, err := (&Encoder{MaxBytes: 4}).Encode(context.Background(), file)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

type blockingReader struct{ release chan struct{} }

func (r blockingReader) Read([]byte) (int, error) {
	<-r.release
	return 0, io.EOF
}

func TestEncodeHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	file := domain.MediaFile{
		Name:     "clip.mp4",
		MIMEType: "video/mp4",
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(blockingReader{release}), nil },
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Encoder{}).Encode(ctx, file)
	assert.ErrorIs(t, err, domain.ErrEncoding)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitDataURI(t *testing.T) {
	header, segment, err := SplitDataURI("data:video/mp4;base64,AAAA,BBBB")
	require.NoError(t, err)
	assert.Equal(t, "data:video/mp4;base64", header)
	assert.Equal(t, "AAAA,BBBB", segment)

	_, _, err = SplitDataURI("video/mp4;base64,AAAA")
	assert.Error(t, err)
	_, _, err = SplitDataURI("data:video/mp4;base64")
	assert.Error(t, err)
}
