// Package gormstore implements the repository contract on GORM (MySQL or SQLite).
package gormstore

import (
	"errors"

	"gorm.io/gorm"

	"redshare/internal/common"
	"redshare/internal/repository"
)

// New builds a repository.Store backed by db.
func New(db *gorm.DB) *repository.Store {
	return &repository.Store{
		Users:     NewUserRepository(db),
		Follows:   NewFollowRepository(db),
		Galleries: NewGalleryRepository(db),
		Likes:     NewLikeRepository(db),
		Saves:     NewSaveRepository(db),
		Comments:  NewCommentRepository(db),
		Close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return common.ErrNotFound
	default:
		return err
	}
}
