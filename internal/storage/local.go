// Package storage holds the filesystem and S3-compatible blob stores.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"redshare/internal/common"
)

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// path rejects names that would escape the base directory.
func (s *LocalStorage) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", common.ErrNotFound
	}
	return filepath.Join(s.basePath, name), nil
}

func (s *LocalStorage) Put(_ context.Context, name, _ string, r io.Reader, _ int64) error {
	fullPath, err := s.path(name)
	if err != nil {
		return common.NewValidationError("file", "invalid file name")
	}

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return os.Rename(tmp.Name(), fullPath)
}

func (s *LocalStorage) Open(_ context.Context, name string) (io.ReadCloser, common.BlobInfo, error) {
	fullPath, err := s.path(name)
	if err != nil {
		return nil, common.BlobInfo{}, err
	}

	f, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.BlobInfo{}, common.ErrNotFound
	}
	if err != nil {
		return nil, common.BlobInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, common.BlobInfo{}, err
	}

	return f, common.BlobInfo{
		Name:        name,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		Size:        st.Size(),
		ModTime:     st.ModTime(),
	}, nil
}

func (s *LocalStorage) Delete(_ context.Context, name string) error {
	fullPath, err := s.path(name)
	if err != nil {
		return nil
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
