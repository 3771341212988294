//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks redshare/internal/repository UserRepository,FollowRepository,GalleryRepository,LedgerRepository,CommentRepository

// Package repository defines the storage contract shared by the in-memory
// store and the GORM backend.
package repository

import (
	"context"

	"redshare/internal/common"
	"redshare/internal/dbmysql"
)

type UserRepository interface {
	// CreateUser assigns ID and timestamps. Returns common.ErrDuplicateUsername
	// when the username clashes case-insensitively.
	CreateUser(ctx context.Context, user *dbmysql.User) error
	GetUserByID(ctx context.Context, id uint64) (*dbmysql.User, error)
	GetUserByUsername(ctx context.Context, username string) (*dbmysql.User, error)
	GetUsersByIDs(ctx context.Context, ids []uint64) (map[uint64]*dbmysql.User, error)
	UpdateUser(ctx context.Context, user *dbmysql.User) error
}

type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID uint64) error
	Unfollow(ctx context.Context, followerID, followingID uint64) error
	IsFollowing(ctx context.Context, followerID, followingID uint64) (bool, error)
	FollowersCount(ctx context.Context, userID uint64) (int64, error)
	FollowingCount(ctx context.Context, userID uint64) (int64, error)
	FollowingIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

// GalleryQuery filters and orders a gallery listing.
type GalleryQuery struct {
	// OwnerIDs restricts to these owners; nil means any owner.
	OwnerIDs []uint64
	// IDs restricts to these galleries; nil means any gallery.
	IDs []uint64
	// Private galleries are included only when ViewerID owns them.
	ViewerID uint64
	SortBy   common.SortBy
	Limit    int
	Offset   int
}

type GalleryRepository interface {
	// CreateGallery stores the gallery and its Items atomically.
	CreateGallery(ctx context.Context, gallery *dbmysql.Gallery) error
	GetGalleryByID(ctx context.Context, id uint64) (*dbmysql.Gallery, error)
	ListGalleries(ctx context.Context, q GalleryQuery) ([]dbmysql.Gallery, error)
	CountUserGalleries(ctx context.Context, userID uint64) (int64, error)
	// FirstItems returns the earliest item per gallery; galleries without items are absent.
	FirstItems(ctx context.Context, galleryIDs []uint64) (map[uint64]dbmysql.GalleryItem, error)
	IncrementViewCount(ctx context.Context, id uint64) (int64, error)
	UpdateVisibility(ctx context.Context, id uint64, visibility common.Visibility) error
	// DeleteGallery removes the gallery with its items, likes, saves and comments.
	DeleteGallery(ctx context.Context, id uint64) error
}

// LedgerRepository is a set of (user, gallery) pairs. Likes and saves are
// two independent ledgers.
type LedgerRepository interface {
	Add(ctx context.Context, userID, galleryID uint64) error
	Remove(ctx context.Context, userID, galleryID uint64) error
	Exists(ctx context.Context, userID, galleryID uint64) (bool, error)
	CountByGallery(ctx context.Context, galleryID uint64) (int64, error)
	// GalleryIDsByUser lists gallery ids in the order the user added them.
	GalleryIDsByUser(ctx context.Context, userID uint64) ([]uint64, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *dbmysql.Comment) error
	GetCommentByID(ctx context.Context, id uint64) (*dbmysql.Comment, error)
	// ListGalleryComments returns all comments of a gallery in creation order.
	ListGalleryComments(ctx context.Context, galleryID uint64) ([]dbmysql.Comment, error)
	CountGalleryComments(ctx context.Context, galleryID uint64) (int64, error)
}

// Store bundles one backend's repositories.
type Store struct {
	Users     UserRepository
	Follows   FollowRepository
	Galleries GalleryRepository
	Likes     LedgerRepository
	Saves     LedgerRepository
	Comments  CommentRepository
	Close     func() error
}
