package media

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"redshare/internal/common"
	"redshare/internal/gallery"
)

const multipartMemory = 32 << 20

var extPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// Limits bounds a single upload request.
type Limits struct {
	MaxFiles     int
	MaxFileBytes int64
}

// Uploader stores the files of a multipart request and turns them into a gallery.
type Uploader struct {
	storage        common.BlobStore
	galleryService gallery.GalleryService
	limits         Limits
	logger         *zap.Logger
}

func NewUploader(storage common.BlobStore, galleryService gallery.GalleryService, limits Limits, logger *zap.Logger) *Uploader {
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = 10
	}
	if limits.MaxFileBytes <= 0 {
		limits.MaxFileBytes = 100 << 20
	}
	return &Uploader{storage: storage, galleryService: galleryService, limits: limits, logger: logger}
}

func (u *Uploader) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/upload", common.RequireAuth(u.Upload)).Methods(http.MethodPost)
}

// blobName keeps the mime subtype as extension, e.g. <uuid>.jpeg.
func blobName(contentType string) string {
	ext := "bin"
	if _, sub, ok := strings.Cut(strings.ToLower(contentType), "/"); ok {
		sub, _, _ = strings.Cut(sub, ";")
		if sub = strings.TrimSpace(sub); extPattern.MatchString(sub) {
			ext = sub
		}
	}
	return uuid.NewString() + "." + ext
}

func uploadedFiles(form *multipart.Form) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	files := form.File["files"]
	return append(files, form.File["files[]"]...)
}

func (u *Uploader) Upload(w http.ResponseWriter, r *http.Request) {
	maxBody := int64(u.limits.MaxFiles)*u.limits.MaxFileBytes + multipartMemory
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.WriteJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"message": "upload too large"})
			return
		}
		common.WriteError(w, common.NewValidationError("files", "invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	title := r.FormValue("title")
	if strings.TrimSpace(title) == "" {
		common.WriteError(w, common.NewValidationError("title", "Title is required"))
		return
	}

	files := uploadedFiles(r.MultipartForm)
	if len(files) == 0 {
		common.WriteError(w, common.NewValidationError("files", "At least one file is required"))
		return
	}
	if len(files) > u.limits.MaxFiles {
		common.WriteError(w, common.NewValidationError("files", "too many files"))
		return
	}
	for _, fh := range files {
		if fh.Size > u.limits.MaxFileBytes {
			common.WriteJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"message": "file too large: " + fh.Filename})
			return
		}
		if !common.IsAcceptedUpload(fh.Header.Get("Content-Type")) {
			common.WriteError(w, common.NewValidationError("files", "unsupported file type: "+fh.Header.Get("Content-Type")))
			return
		}
	}

	ctx := r.Context()
	stored := make([]string, 0, len(files))
	items := make([]gallery.NewItem, 0, len(files))
	for _, fh := range files {
		item, name, err := u.store(ctx, fh)
		if err != nil {
			u.cleanup(ctx, stored)
			u.logger.Error("store upload failed", zap.String("file", fh.Filename), zap.Error(err))
			common.WriteError(w, err)
			return
		}
		stored = append(stored, name)
		items = append(items, item)
	}

	created, err := u.galleryService.CreateGallery(ctx, common.ViewerID(ctx), gallery.CreateInput{
		Title:       title,
		Description: r.FormValue("description"),
		Tags:        r.FormValue("tags"),
		Visibility:  r.FormValue("visibility"),
		Items:       items,
	})
	if err != nil {
		u.cleanup(ctx, stored)
		if common.StatusFromError(err) == http.StatusInternalServerError {
			u.logger.Error("create gallery failed", zap.Error(err))
		}
		common.WriteError(w, err)
		return
	}

	u.logger.Info("gallery uploaded",
		zap.Uint64("gallery_id", created.ID),
		zap.Uint64("user_id", created.UserID),
		zap.Int("files", len(items)))
	common.WriteJSON(w, http.StatusCreated, created)
}

func (u *Uploader) store(ctx context.Context, fh *multipart.FileHeader) (gallery.NewItem, string, error) {
	contentType := fh.Header.Get("Content-Type")
	name := blobName(contentType)

	src, err := fh.Open()
	if err != nil {
		return gallery.NewItem{}, "", err
	}
	defer src.Close()

	if err := u.storage.Put(ctx, name, contentType, src, fh.Size); err != nil {
		return gallery.NewItem{}, "", err
	}

	url := gallery.MediaPathPrefix + name
	return gallery.NewItem{
		FileURL:      url,
		ThumbnailURL: url,
		FileType:     common.DetectFileType(contentType),
	}, name, nil
}

func (u *Uploader) cleanup(ctx context.Context, names []string) {
	for _, name := range names {
		if err := u.storage.Delete(context.WithoutCancel(ctx), name); err != nil {
			u.logger.Warn("remove orphaned upload", zap.String("name", name), zap.Error(err))
		}
	}
}
