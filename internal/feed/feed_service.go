// Package feed answers the read side: public listings, the follow feed,
// saved galleries and the enriched gallery detail.
package feed

import (
	"context"
	"fmt"

	"redshare/internal/common"
	"redshare/internal/dbmysql"
	"redshare/internal/gallery"
	"redshare/internal/repository"
)

// GalleryDetail is a gallery as seen by one viewer. The Is* flags are only
// set for signed-in viewers; IsFollowing is left out on one's own gallery.
type GalleryDetail struct {
	dbmysql.Gallery
	Username      string `json:"username"`
	LikesCount    int64  `json:"likesCount"`
	CommentsCount int64  `json:"commentsCount"`
	IsOwnGallery  *bool  `json:"isOwnGallery,omitempty"`
	IsFollowing   *bool  `json:"isFollowing,omitempty"`
	IsLiked       *bool  `json:"isLiked,omitempty"`
	IsSaved       *bool  `json:"isSaved,omitempty"`
}

type FeedUsecase interface {
	GetAllContent(ctx context.Context, page common.Page, sortBy common.SortBy) ([]gallery.Card, error)
	GetFeedContent(ctx context.Context, userID uint64, page common.Page) ([]gallery.Card, error)
	GetSavedContent(ctx context.Context, userID uint64, page common.Page) ([]gallery.Card, error)
	GetGalleryDetail(ctx context.Context, viewerID, galleryID uint64) (*GalleryDetail, error)
}

type FeedService struct {
	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	galleryRepo repository.GalleryRepository
	likes       repository.LedgerRepository
	saves       repository.LedgerRepository
	commentRepo repository.CommentRepository
	cards       *gallery.CardBuilder
}

func NewFeedService(store *repository.Store, cards *gallery.CardBuilder) *FeedService {
	return &FeedService{
		userRepo:    store.Users,
		followRepo:  store.Follows,
		galleryRepo: store.Galleries,
		likes:       store.Likes,
		saves:       store.Saves,
		commentRepo: store.Comments,
		cards:       cards,
	}
}

func (s *FeedService) list(ctx context.Context, q repository.GalleryQuery) ([]gallery.Card, error) {
	galleries, err := s.galleryRepo.ListGalleries(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.cards.Build(ctx, galleries)
}

// GetAllContent lists public galleries only.
func (s *FeedService) GetAllContent(ctx context.Context, page common.Page, sortBy common.SortBy) ([]gallery.Card, error) {
	return s.list(ctx, repository.GalleryQuery{
		SortBy: sortBy,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// GetFeedContent lists public galleries of followed users, newest first.
func (s *FeedService) GetFeedContent(ctx context.Context, userID uint64, page common.Page) ([]gallery.Card, error) {
	following, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load following: %w", err)
	}
	if len(following) == 0 {
		return []gallery.Card{}, nil
	}

	return s.list(ctx, repository.GalleryQuery{
		OwnerIDs: following,
		SortBy:   common.SortRecent,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
}

// GetSavedContent lists saved galleries by creation time, newest first.
// A saved gallery that later went private stays visible to its owner only.
func (s *FeedService) GetSavedContent(ctx context.Context, userID uint64, page common.Page) ([]gallery.Card, error) {
	saved, err := s.saves.GalleryIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load saved: %w", err)
	}
	if len(saved) == 0 {
		return []gallery.Card{}, nil
	}

	return s.list(ctx, repository.GalleryQuery{
		IDs:      saved,
		ViewerID: userID,
		SortBy:   common.SortRecent,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
}

// GetGalleryDetail counts the view as part of the read; the returned
// ViewCount includes it.
func (s *FeedService) GetGalleryDetail(ctx context.Context, viewerID, galleryID uint64) (*GalleryDetail, error) {
	g, err := s.galleryRepo.GetGalleryByID(ctx, galleryID)
	if err != nil {
		return nil, err
	}
	if !g.IsVisibleTo(viewerID) {
		return nil, common.ErrForbidden
	}

	detail := &GalleryDetail{Gallery: *g, Username: gallery.UnknownUsername}
	owners, err := s.userRepo.GetUsersByIDs(ctx, []uint64{g.UserID})
	if err != nil {
		return nil, err
	}
	if owner, ok := owners[g.UserID]; ok {
		detail.Username = owner.Username
	}

	if detail.LikesCount, err = s.likes.CountByGallery(ctx, galleryID); err != nil {
		return nil, err
	}
	if detail.CommentsCount, err = s.commentRepo.CountGalleryComments(ctx, galleryID); err != nil {
		return nil, err
	}

	if viewerID != 0 {
		if err := s.attachViewerFlags(ctx, viewerID, detail); err != nil {
			return nil, err
		}
	}

	views, err := s.galleryRepo.IncrementViewCount(ctx, galleryID)
	if err != nil {
		return nil, err
	}
	detail.ViewCount = views
	return detail, nil
}

func (s *FeedService) attachViewerFlags(ctx context.Context, viewerID uint64, detail *GalleryDetail) error {
	own := viewerID == detail.UserID
	detail.IsOwnGallery = &own

	if !own {
		following, err := s.followRepo.IsFollowing(ctx, viewerID, detail.UserID)
		if err != nil {
			return err
		}
		detail.IsFollowing = &following
	}

	liked, err := s.likes.Exists(ctx, viewerID, detail.ID)
	if err != nil {
		return err
	}
	saved, err := s.saves.Exists(ctx, viewerID, detail.ID)
	if err != nil {
		return err
	}
	detail.IsLiked = &liked
	detail.IsSaved = &saved
	return nil
}
