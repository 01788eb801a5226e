// infrastructure/local_media_store.go
package infrastructure

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var DefaultNativeFormats = []string{"mp4", "webm", "ogg"}

// LocalMediaStore is the native save capability: it writes decoded payloads
// under Root and returns a short public path for them.
type LocalMediaStore struct {
	Root         string
	PublicPrefix string
	Formats      []string
}

func NewLocalMediaStore(root, publicPrefix string, formats []string) *LocalMediaStore {
	if len(formats) == 0 {
		formats = DefaultNativeFormats
	}
	if publicPrefix == "" {
		publicPrefix = "/user/videos"
	}
	return &LocalMediaStore{Root: root, PublicPrefix: publicPrefix, Formats: formats}
}

func (s *LocalMediaStore) Supports(extension string) bool {
	extension = strings.ToLower(strings.TrimPrefix(extension, "."))
	for _, f := range s.Formats {
		if strings.EqualFold(f, extension) {
			return true
		}
	}
	return false
}

func (s *LocalMediaStore) SaveBase64(ctx context.Context, segment, ownerLabel, namePrefix, extension string) (string, error) {
	if !s.Supports(extension) {
		return "", fmt.Errorf("extension %q not accepted by media store", extension)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(segment)
	if err != nil {
		return "", fmt.Errorf("failed to decode video payload: %w", err)
	}

	owner := sanitizeSegment(ownerLabel)
	fileName := sanitizeSegment(namePrefix) + "." + strings.ToLower(extension)
	dir := filepath.Join(s.Root, owner)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), data, 0644); err != nil {
		return "", fmt.Errorf("failed to save video file: %w", err)
	}
	return path.Join(s.PublicPrefix, owner, fileName), nil
}

// sanitizeSegment keeps a name usable as a single path element.
func sanitizeSegment(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
