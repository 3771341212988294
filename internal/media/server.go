// Package media takes multipart uploads into a BlobStore and serves the
// stored blobs back.
package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"redshare/internal/common"
	"redshare/internal/gallery"
)

type HTTPServer struct {
	storage common.BlobStore
	logger  *zap.Logger
}

func NewHTTPServer(storage common.BlobStore, logger *zap.Logger) *HTTPServer {
	return &HTTPServer{storage: storage, logger: logger}
}

// RegisterRoutes mounts GET /uploads/{name} on the root router.
func (s *HTTPServer) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(gallery.MediaPathPrefix+"{name}", s.serveFile).Methods(http.MethodGet, http.MethodHead)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	file, info, err := s.storage.Open(r.Context(), name)
	if errors.Is(err, common.ErrNotFound) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("open blob failed", zap.String("name", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	contentType := info.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = getContentType(name)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if rs, ok := file.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, info.ModTime, rs)
		return
	}

	if !info.ModTime.IsZero() {
		w.Header().Set("Last-Modified", info.ModTime.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size))
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, file); err != nil {
		s.logger.Warn("error streaming file", zap.String("name", name), zap.Error(err))
	}
}

func getContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
