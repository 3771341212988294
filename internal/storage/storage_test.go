package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redshare/internal/common"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"), 10))

	rc, info, err := s.Open(ctx, "a.jpg")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(body))
	assert.Equal(t, int64(10), info.Size)
	assert.Equal(t, "image/jpeg", info.ContentType)
	_, seekable := rc.(io.Seeker)
	assert.True(t, seekable)

	require.NoError(t, s.Delete(ctx, "a.jpg"))
	require.NoError(t, s.Delete(ctx, "a.jpg"))
	_, _, err = s.Open(ctx, "a.jpg")
	assert.ErrorIs(t, err, common.ErrNotFound)

	entries, err := os.ReadDir(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files are cleaned up")
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"../etc/passwd", "sub/file.jpg", ".hidden", ""} {
		_, _, err := s.Open(ctx, name)
		assert.ErrorIs(t, err, common.ErrNotFound, name)
		assert.ErrorIs(t, s.Put(ctx, name, "image/png", strings.NewReader("x"), 1), common.ErrValidation, name)
	}
}

func TestMapS3Error(t *testing.T) {
	notFound := minio.ErrorResponse{StatusCode: http.StatusNotFound, Code: "NoSuchKey"}
	assert.ErrorIs(t, mapS3Error(notFound), common.ErrNotFound)

	denied := minio.ErrorResponse{StatusCode: http.StatusForbidden, Code: "AccessDenied"}
	assert.False(t, errors.Is(mapS3Error(denied), common.ErrNotFound))
}

func TestNewS3Storage_StripsScheme(t *testing.T) {
	s, err := NewS3Storage(S3Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", s.client.EndpointURL().Host)
}
