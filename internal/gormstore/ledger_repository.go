package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"redshare/internal/dbmysql"
	"redshare/internal/repository"
)

// ledgerRepository serves both likes and saves; model picks the table.
type ledgerRepository struct {
	db    *gorm.DB
	model func(userID, galleryID uint64) interface{}
}

func NewLikeRepository(db *gorm.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db, model: func(userID, galleryID uint64) interface{} {
		return &dbmysql.Like{UserID: userID, GalleryID: galleryID}
	}}
}

func NewSaveRepository(db *gorm.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db, model: func(userID, galleryID uint64) interface{} {
		return &dbmysql.Save{UserID: userID, GalleryID: galleryID}
	}}
}

func (r *ledgerRepository) Add(ctx context.Context, userID, galleryID uint64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(r.model(userID, galleryID)).Error
}

func (r *ledgerRepository) Remove(ctx context.Context, userID, galleryID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND gallery_id = ?", userID, galleryID).
		Delete(r.model(0, 0)).Error
}

func (r *ledgerRepository) Exists(ctx context.Context, userID, galleryID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(r.model(0, 0)).
		Where("user_id = ? AND gallery_id = ?", userID, galleryID).
		Count(&count).Error
	return count > 0, err
}

func (r *ledgerRepository) CountByGallery(ctx context.Context, galleryID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(r.model(0, 0)).Where("gallery_id = ?", galleryID).Count(&count).Error
	return count, err
}

func (r *ledgerRepository) GalleryIDsByUser(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := []uint64{}
	err := r.db.WithContext(ctx).Model(r.model(0, 0)).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("gallery_id", &ids).Error
	return ids, err
}
