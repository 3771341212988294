package dbmongo

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redshare/internal/common"
	"redshare/internal/config"
)

// Runs against a live MongoDB when MONGO_INTEGRATION=1.
func newIntegrationStorage(t *testing.T) *MediaStorage {
	t.Helper()
	if os.Getenv("MONGO_INTEGRATION") != "1" {
		t.Skip("set MONGO_INTEGRATION=1 to run against MongoDB")
	}

	cfg := &config.Config{
		MongoDB: config.MongoDBConfig{
			Host:     getEnvOrDefault("MONGO_HOST", "localhost"),
			Port:     getEnvOrDefault("MONGO_PORT", "27017"),
			Username: os.Getenv("MONGO_USERNAME"),
			Password: os.Getenv("MONGO_PASSWORD"),
			Database: getEnvOrDefault("MONGO_DATABASE", "redshare_test"),
			Bucket:   "media_test",
		},
	}
	client, err := NewMongoConnection(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(context.Background()) })
	return NewMediaStorage(client)
}

func TestMediaStorage_Integration(t *testing.T) {
	storage := newIntegrationStorage(t)
	ctx := context.Background()
	content := "fake-video-content"

	require.NoError(t, storage.Put(ctx, "clip.mp4", "video/mp4", strings.NewReader(content), int64(len(content))))

	rc, info, err := storage.Open(ctx, "clip.mp4")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	assert.Equal(t, content, string(body))
	assert.Equal(t, "video/mp4", info.ContentType)
	assert.Equal(t, int64(len(content)), info.Size)

	require.NoError(t, storage.Delete(ctx, "clip.mp4"))
	require.NoError(t, storage.Delete(ctx, "clip.mp4"))

	_, _, err = storage.Open(ctx, "clip.mp4")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
