package infrastructure

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalMediaStoreSave(t *testing.T) {
	root := t.TempDir()
	store := NewLocalMediaStore(root, "", nil)
	segment := base64.StdEncoding.EncodeToString([]byte("frames"))

	ref, err := store.SaveBase64(context.Background(), segment, "alice", "video_1700000000000_1", "MP4")

	require.NoError(t, err)
	assert.Equal(t, "/user/videos/alice/video_1700000000000_1.mp4", ref)
	assert.Less(t, len(ref), 100)
	data, err := os.ReadFile(filepath.Join(root, "alice", "video_1700000000000_1.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "frames", string(data))
}

func TestLocalMediaStoreSanitizesPathElements(t *testing.T) {
	root := t.TempDir()
	store := NewLocalMediaStore(root, "/media", []string{"webm"})

	ref, err := store.SaveBase64(context.Background(), "AA==", "../etc", "a/b", "webm")

	require.NoError(t, err)
	assert.Equal(t, "/media/___etc/a_b.webm", ref)
	_, err = os.Stat(filepath.Join(root, "___etc", "a_b.webm"))
	assert.NoError(t, err)
}

func TestLocalMediaStoreRejects(t *testing.T) {
	store := NewLocalMediaStore(t.TempDir(), "", nil)

	assert.True(t, store.Supports(".OGG"))
	assert.False(t, store.Supports("mkv"))

	_, err := store.SaveBase64(context.Background(), "AA==", "a", "b", "mkv")
	assert.ErrorContains(t, err, "not accepted")

	_, err = store.SaveBase64(context.Background(), "%%%", "a", "b", "mp4")
	assert.ErrorContains(t, err, "decode")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.SaveBase64(ctx, "AA==", "a", "b", "mp4")
	assert.ErrorIs(t, err, context.Canceled)
}
