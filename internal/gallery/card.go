package gallery

import (
	"context"
	"time"

	"redshare/internal/common"
	"redshare/internal/dbmysql"
	"redshare/internal/repository"
)

// UnknownUsername stands in for an owner that no longer resolves.
const UnknownUsername = "unknown"

// Card is the compact listing projection of a gallery, drawn from its first item.
type Card struct {
	ID           uint64                `json:"id"`
	Title        string                `json:"title"`
	Username     string                `json:"username"`
	ThumbnailURL *string               `json:"thumbnailUrl"`
	FileType     *common.MediaFileType `json:"fileType"`
	Duration     *string               `json:"duration,omitempty"`
	ViewCount    int64                 `json:"viewCount"`
	CreatedAt    time.Time             `json:"createdAt"`
}

// CardBuilder projects galleries into cards, resolving owner names live.
type CardBuilder struct {
	userRepo    repository.UserRepository
	galleryRepo repository.GalleryRepository
}

func NewCardBuilder(userRepo repository.UserRepository, galleryRepo repository.GalleryRepository) *CardBuilder {
	return &CardBuilder{userRepo: userRepo, galleryRepo: galleryRepo}
}

// Build keeps the order of galleries. The result is never nil.
func (b *CardBuilder) Build(ctx context.Context, galleries []dbmysql.Gallery) ([]Card, error) {
	cards := make([]Card, 0, len(galleries))
	if len(galleries) == 0 {
		return cards, nil
	}

	galleryIDs := make([]uint64, 0, len(galleries))
	ownerIDs := make([]uint64, 0, len(galleries))
	for _, g := range galleries {
		galleryIDs = append(galleryIDs, g.ID)
		ownerIDs = append(ownerIDs, g.UserID)
	}

	owners, err := b.userRepo.GetUsersByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	firstItems, err := b.galleryRepo.FirstItems(ctx, galleryIDs)
	if err != nil {
		return nil, err
	}

	for _, g := range galleries {
		card := Card{
			ID:        g.ID,
			Title:     g.Title,
			Username:  UnknownUsername,
			ViewCount: g.ViewCount,
			CreatedAt: g.CreatedAt,
		}
		if owner, ok := owners[g.UserID]; ok {
			card.Username = owner.Username
		}
		if item, ok := firstItems[g.ID]; ok {
			thumb, fileType := item.ThumbnailURL, item.FileType
			card.ThumbnailURL = &thumb
			card.FileType = &fileType
			card.Duration = item.Duration
		}
		cards = append(cards, card)
	}
	return cards, nil
}
