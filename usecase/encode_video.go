// usecase/encode_video.go
package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/vitovidale/video-recognition-service/domain"
)

// Encoder turns a MediaFile into a data URI and splits off its payload segment.
type Encoder struct {
	MaxBytes int64
}

type readResult struct {
	data []byte
	err  error
}

// Encode reads file and returns its encoded payload. The read runs in its own
// goroutine so a cancelled ctx returns immediately.
func (e *Encoder) Encode(ctx context.Context, file domain.MediaFile) (domain.EncodedPayload, error) {
	if file.Open == nil {
		return domain.EncodedPayload{}, domain.EncodingError(fmt.Errorf("no content for %q", file.Name))
	}

	done := make(chan readResult, 1)
	go func() {
		data, err := e.read(file)
		done <- readResult{data: data, err: err}
	}()

	var res readResult
	select {
	case <-ctx.Done():
		return domain.EncodedPayload{}, domain.EncodingError(ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return domain.EncodedPayload{}, res.err
	}

	mimeType := file.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	dataURI := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(res.data)
	header, segment, err := SplitDataURI(dataURI)
	if err != nil {
		return domain.EncodedPayload{}, domain.EncodingError(err)
	}
	return domain.EncodedPayload{
		DataURI: dataURI,
		Header:  header,
		Segment: segment,
		Size:    int64(len(res.data)),
		Digest:  res.data,
	}, nil
}

func (e *Encoder) read(file domain.MediaFile) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, domain.EncodingError(fmt.Errorf("open %q: %w", file.Name, err))
	}
	defer rc.Close()

	var src io.Reader = rc
	if e.MaxBytes > 0 {
		src = io.LimitReader(rc, e.MaxBytes+1)
	}
	var buf bytes.Buffer
	if file.Size > 0 && (e.MaxBytes <= 0 || file.Size <= e.MaxBytes) {
		buf.Grow(int(file.Size))
	}
	if _, err := io.Copy(&buf, src); err != nil {
		return nil, domain.EncodingError(fmt.Errorf("read %q: %w", file.Name, err))
	}
	if e.MaxBytes > 0 && int64(buf.Len()) > e.MaxBytes {
		return nil, domain.ValidationError("video file too large: more than %d bytes read", e.MaxBytes)
	}
	return buf.Bytes(), nil
}

// SplitDataURI splits a data URI at its first comma into header and payload.
func SplitDataURI(dataURI string) (header, segment string, err error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return "", "", fmt.Errorf("not a data URI")
	}
	header, segment, ok := strings.Cut(dataURI, ",")
	if !ok {
		return "", "", fmt.Errorf("data URI has no payload separator")
	}
	return header, segment, nil
}
