package common

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes a stored media blob.
type BlobInfo struct {
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
}

// BlobStore persists uploaded media under generated names. Open returns
// ErrNotFound for unknown names; Delete of an unknown name is not an error.
// Readers returned by Open may also implement io.Seeker.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader, size int64) error
	Open(ctx context.Context, name string) (io.ReadCloser, BlobInfo, error)
	Delete(ctx context.Context, name string) error
}

// TokenRevoker remembers logged-out token ids until they would expire anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
