// Package interaction records likes and saves. The two ledgers are
// independent sets of (user, gallery) pairs with idempotent toggles.
package interaction

import (
	"context"

	"redshare/internal/activity"
	"redshare/internal/common"
	"redshare/internal/repository"
)

type InteractionService interface {
	Like(ctx context.Context, userID, galleryID uint64) error
	Unlike(ctx context.Context, userID, galleryID uint64) error
	IsLiked(ctx context.Context, userID, galleryID uint64) (bool, error)
	LikesCount(ctx context.Context, galleryID uint64) (int64, error)

	Save(ctx context.Context, userID, galleryID uint64) error
	Unsave(ctx context.Context, userID, galleryID uint64) error
	IsSaved(ctx context.Context, userID, galleryID uint64) (bool, error)
}

type interactionService struct {
	galleryRepo repository.GalleryRepository
	likes       repository.LedgerRepository
	saves       repository.LedgerRepository
	publisher   activity.Publisher
}

func NewInteractionService(
	galleryRepo repository.GalleryRepository,
	likes repository.LedgerRepository,
	saves repository.LedgerRepository,
	publisher activity.Publisher,
) InteractionService {
	return &interactionService{galleryRepo: galleryRepo, likes: likes, saves: saves, publisher: publisher}
}

func (s *interactionService) add(ctx context.Context, ledger repository.LedgerRepository, event activity.EventType, userID, galleryID uint64) error {
	gallery, err := s.galleryRepo.GetGalleryByID(ctx, galleryID)
	if err != nil {
		return err
	}
	if !gallery.IsVisibleTo(userID) {
		return common.ErrForbidden
	}

	exists, err := ledger.Exists(ctx, userID, galleryID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := ledger.Add(ctx, userID, galleryID); err != nil {
		return err
	}
	s.publisher.Publish(activity.NewEvent(event, userID).WithGallery(galleryID).WithTargetUser(gallery.UserID))
	return nil
}

// remove does not require the gallery to exist; removing an absent pair is a no-op.
func (s *interactionService) remove(ctx context.Context, ledger repository.LedgerRepository, event activity.EventType, userID, galleryID uint64) error {
	exists, err := ledger.Exists(ctx, userID, galleryID)
	if err != nil || !exists {
		return err
	}
	if err := ledger.Remove(ctx, userID, galleryID); err != nil {
		return err
	}
	s.publisher.Publish(activity.NewEvent(event, userID).WithGallery(galleryID))
	return nil
}

func (s *interactionService) Like(ctx context.Context, userID, galleryID uint64) error {
	return s.add(ctx, s.likes, activity.GalleryLiked, userID, galleryID)
}

func (s *interactionService) Unlike(ctx context.Context, userID, galleryID uint64) error {
	return s.remove(ctx, s.likes, activity.GalleryUnliked, userID, galleryID)
}

func (s *interactionService) IsLiked(ctx context.Context, userID, galleryID uint64) (bool, error) {
	return s.likes.Exists(ctx, userID, galleryID)
}

func (s *interactionService) LikesCount(ctx context.Context, galleryID uint64) (int64, error) {
	return s.likes.CountByGallery(ctx, galleryID)
}

func (s *interactionService) Save(ctx context.Context, userID, galleryID uint64) error {
	return s.add(ctx, s.saves, activity.GallerySaved, userID, galleryID)
}

func (s *interactionService) Unsave(ctx context.Context, userID, galleryID uint64) error {
	return s.remove(ctx, s.saves, activity.GalleryUnsaved, userID, galleryID)
}

func (s *interactionService) IsSaved(ctx context.Context, userID, galleryID uint64) (bool, error) {
	return s.saves.Exists(ctx, userID, galleryID)
}
