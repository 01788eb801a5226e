// usecase/file_naming.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vitovidale/video-recognition-service/domain"
)

const (
	namePrefix         = "video"
	defaultExtension   = "mp4"
	hashDiscriminatorN = 12
)

// FileIdentity is the generated name of one upload.
type FileIdentity struct {
	Prefix    string
	Extension string
	FileName  string
	Owner     string
}

// NameGenerator builds upload names from a creation timestamp, a content hash
// when a hasher is available, and a process-wide sequence number. The sequence
// keeps identical content uploaded in the same millisecond apart.
type NameGenerator struct {
	seq atomic.Uint64
	now func() time.Time
}

func NewNameGenerator() *NameGenerator {
	return &NameGenerator{now: time.Now}
}

func (g *NameGenerator) generate(ctx context.Context, file domain.MediaFile, payload domain.EncodedPayload, h namingHelpers) FileIdentity {
	ts := g.now().UnixMilli()

	disc := fmt.Sprintf("%d", g.seq.Add(1))
	if h.hasher != nil {
		if sum := h.hasher.Hash(payload.Digest); len(sum) >= hashDiscriminatorN {
			disc = sum[:hashDiscriminatorN] + "_" + disc
		}
	}

	ext := Extension(file.Name)
	if ext == "" && h.inferrer != nil {
		ext = strings.ToLower(strings.TrimPrefix(h.inferrer.InferExtension(file.MIMEType), "."))
	}
	if ext == "" {
		ext = defaultExtension
	}

	prefix := fmt.Sprintf("%s_%d_%s", namePrefix, ts, disc)
	owner := ""
	if h.owner != nil {
		owner = h.owner.OwnerLabel(ctx)
	}
	if owner == "" {
		owner = prefix
	}
	return FileIdentity{
		Prefix:    prefix,
		Extension: ext,
		FileName:  prefix + "." + ext,
		Owner:     owner,
	}
}
