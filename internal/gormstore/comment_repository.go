package gormstore

import (
	"context"

	"gorm.io/gorm"

	"redshare/internal/dbmysql"
	"redshare/internal/repository"
)

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) repository.CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) CreateComment(ctx context.Context, comment *dbmysql.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetCommentByID(ctx context.Context, id uint64) (*dbmysql.Comment, error) {
	var comment dbmysql.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListGalleryComments(ctx context.Context, galleryID uint64) ([]dbmysql.Comment, error) {
	comments := []dbmysql.Comment{}
	err := r.db.WithContext(ctx).
		Where("gallery_id = ?", galleryID).
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountGalleryComments(ctx context.Context, galleryID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Comment{}).Where("gallery_id = ?", galleryID).Count(&count).Error
	return count, err
}
