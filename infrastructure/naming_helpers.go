// infrastructure/naming_helpers.go
package infrastructure

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SHA256Hasher is the content hash capability.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MimeExtensionInferrer maps a declared MIME type to its usual extension.
type MimeExtensionInferrer struct{}

func (MimeExtensionInferrer) InferExtension(mimeType string) string {
	m := mimetype.Lookup(strings.ToLower(strings.TrimSpace(mimeType)))
	if m == nil {
		return ""
	}
	return strings.TrimPrefix(m.Extension(), ".")
}

type ownerKey struct{}

// WithOwner stores the authenticated owner label in ctx.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}

// ContextOwnerLabeler is the owner label capability. It reads the label the
// auth middleware put in the request context.
type ContextOwnerLabeler struct{}

func (ContextOwnerLabeler) OwnerLabel(ctx context.Context) string {
	return OwnerFromContext(ctx)
}
