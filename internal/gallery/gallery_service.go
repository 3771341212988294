// Package gallery owns gallery creation, ownership changes and the card
// projection used by every listing.
package gallery

import (
	"context"
	"strings"

	"redshare/internal/activity"
	"redshare/internal/common"
	"redshare/internal/dbmysql"
	"redshare/internal/repository"
)

// MediaPathPrefix is where uploaded blobs are served from.
const MediaPathPrefix = "/uploads/"

// DefaultVideoDuration is shown for videos whose length is unknown.
const DefaultVideoDuration = "0:00"

type NewItem struct {
	FileURL      string
	ThumbnailURL string
	FileType     common.MediaFileType
	Duration     string
}

type CreateInput struct {
	Title       string
	Description string
	// Tags is the raw comma separated form.
	Tags       string
	Visibility string
	Items      []NewItem
}

type GalleryService interface {
	CreateGallery(ctx context.Context, ownerID uint64, in CreateInput) (*dbmysql.Gallery, error)
	ListUserGalleries(ctx context.Context, viewerID uint64, username string, page common.Page) ([]Card, error)
	SetVisibility(ctx context.Context, ownerID, galleryID uint64, visibility string) (*dbmysql.Gallery, error)
	DeleteGallery(ctx context.Context, ownerID, galleryID uint64) error
}

type galleryService struct {
	userRepo    repository.UserRepository
	galleryRepo repository.GalleryRepository
	cards       *CardBuilder
	blobs       common.BlobStore
	publisher   activity.Publisher
}

// NewGalleryService builds the service. blobs may be nil, in which case
// deleting a gallery leaves its files in place.
func NewGalleryService(
	userRepo repository.UserRepository,
	galleryRepo repository.GalleryRepository,
	cards *CardBuilder,
	blobs common.BlobStore,
	publisher activity.Publisher,
) GalleryService {
	return &galleryService{
		userRepo:    userRepo,
		galleryRepo: galleryRepo,
		cards:       cards,
		blobs:       blobs,
		publisher:   publisher,
	}
}

func (s *galleryService) CreateGallery(ctx context.Context, ownerID uint64, in CreateInput) (*dbmysql.Gallery, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(in.Items) == 0 {
		return nil, common.ErrInvalidGallery
	}
	if err := common.ValidateTitle(title); err != nil {
		return nil, err
	}
	visibility, err := common.ParseVisibility(in.Visibility)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}

	gallery := &dbmysql.Gallery{
		Title:      title,
		UserID:     ownerID,
		Tags:       common.ParseTags(in.Tags),
		Visibility: visibility,
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		gallery.Description = &desc
	}

	for _, it := range in.Items {
		if strings.TrimSpace(it.FileURL) == "" || !it.FileType.IsValid() {
			return nil, common.ErrInvalidGallery
		}
		item := dbmysql.GalleryItem{
			UserID:       ownerID,
			FileURL:      it.FileURL,
			ThumbnailURL: it.ThumbnailURL,
			FileType:     it.FileType,
		}
		if item.ThumbnailURL == "" {
			item.ThumbnailURL = it.FileURL
		}
		if it.FileType == common.MediaFileTypeVideo {
			duration := it.Duration
			if duration == "" {
				duration = DefaultVideoDuration
			}
			item.Duration = &duration
		}
		gallery.Items = append(gallery.Items, item)
	}

	if err := s.galleryRepo.CreateGallery(ctx, gallery); err != nil {
		return nil, err
	}

	s.publisher.Publish(activity.NewEvent(activity.GalleryCreated, ownerID).WithGallery(gallery.ID))
	return gallery, nil
}

// ListUserGalleries lists newest-first; private galleries appear only to their owner.
func (s *galleryService) ListUserGalleries(ctx context.Context, viewerID uint64, username string, page common.Page) ([]Card, error) {
	owner, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	galleries, err := s.galleryRepo.ListGalleries(ctx, repository.GalleryQuery{
		OwnerIDs: []uint64{owner.ID},
		ViewerID: viewerID,
		SortBy:   common.SortRecent,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return nil, err
	}
	return s.cards.Build(ctx, galleries)
}

func (s *galleryService) ownedGallery(ctx context.Context, ownerID, galleryID uint64) (*dbmysql.Gallery, error) {
	gallery, err := s.galleryRepo.GetGalleryByID(ctx, galleryID)
	if err != nil {
		return nil, err
	}
	if gallery.UserID != ownerID {
		return nil, common.ErrForbidden
	}
	return gallery, nil
}

func (s *galleryService) SetVisibility(ctx context.Context, ownerID, galleryID uint64, visibility string) (*dbmysql.Gallery, error) {
	if strings.TrimSpace(visibility) == "" {
		return nil, common.ErrInvalidVisibility
	}
	v, err := common.ParseVisibility(visibility)
	if err != nil {
		return nil, err
	}

	gallery, err := s.ownedGallery(ctx, ownerID, galleryID)
	if err != nil {
		return nil, err
	}
	if err := s.galleryRepo.UpdateVisibility(ctx, galleryID, v); err != nil {
		return nil, err
	}
	gallery.Visibility = v
	return gallery, nil
}

func (s *galleryService) DeleteGallery(ctx context.Context, ownerID, galleryID uint64) error {
	gallery, err := s.ownedGallery(ctx, ownerID, galleryID)
	if err != nil {
		return err
	}
	if err := s.galleryRepo.DeleteGallery(ctx, galleryID); err != nil {
		return err
	}

	if s.blobs != nil {
		for _, item := range gallery.Items {
			if name, ok := strings.CutPrefix(item.FileURL, MediaPathPrefix); ok {
				// the gallery is gone either way
				_ = s.blobs.Delete(ctx, name)
			}
		}
	}

	s.publisher.Publish(activity.NewEvent(activity.GalleryDeleted, ownerID).WithGallery(galleryID))
	return nil
}
