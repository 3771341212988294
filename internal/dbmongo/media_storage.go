package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"redshare/internal/common"
)

// MediaStorage is a BlobStore over a GridFS bucket. Blobs are addressed by
// their file name, which the upload path makes unique.
type MediaStorage struct {
	gridFS *gridfs.Bucket
}

func NewMediaStorage(mongoClient *MongoClient) *MediaStorage {
	return &MediaStorage{
		gridFS: mongoClient.GridFS,
	}
}

func fileMetadata(contentType string, now time.Time) bson.M {
	return bson.M{
		"file_type":    common.DetectFileType(contentType).String(),
		"content_type": contentType,
		"uploaded_at":  now,
	}
}

func (ms *MediaStorage) Put(ctx context.Context, name, contentType string, r io.Reader, _ int64) error {
	opts := options.GridFSUpload().SetMetadata(fileMetadata(contentType, time.Now()))
	stream, err := ms.gridFS.OpenUploadStream(name, opts)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return fmt.Errorf("file copy failed: %w", err)
	}
	return stream.Close()
}

func (ms *MediaStorage) Open(ctx context.Context, name string) (io.ReadCloser, common.BlobInfo, error) {
	stream, err := ms.gridFS.OpenDownloadStreamByName(name)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, common.BlobInfo{}, common.ErrNotFound
	}
	if err != nil {
		return nil, common.BlobInfo{}, fmt.Errorf("download failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		_ = bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	return stream, common.BlobInfo{
		Name:        fileInfo.Name,
		ContentType: getStringFromMap(metadata, "content_type"),
		Size:        fileInfo.Length,
		ModTime:     fileInfo.UploadDate,
	}, nil
}

// Delete removes every revision stored under name.
func (ms *MediaStorage) Delete(ctx context.Context, name string) error {
	cursor, err := ms.gridFS.Find(bson.M{"filename": name})
	if err != nil {
		return fmt.Errorf("find file: %w", err)
	}

	var files []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return fmt.Errorf("find file: %w", err)
	}
	for _, f := range files {
		if err := ms.gridFS.Delete(f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return err
		}
	}
	return nil
}

// Helper function for metadata extraction
func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
