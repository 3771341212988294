package gormstore

import (
	"context"

	"gorm.io/gorm"

	"redshare/internal/common"
	"redshare/internal/dbmysql"
	"redshare/internal/repository"
)

const popularOrder = "(SELECT COUNT(*) FROM likes WHERE likes.gallery_id = galleries.id) DESC, galleries.id ASC"

type galleryRepository struct {
	db *gorm.DB
}

func NewGalleryRepository(db *gorm.DB) repository.GalleryRepository {
	return &galleryRepository{db: db}
}

func (r *galleryRepository) CreateGallery(ctx context.Context, gallery *dbmysql.Gallery) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(gallery).Error
	})
}

func (r *galleryRepository) GetGalleryByID(ctx context.Context, id uint64) (*dbmysql.Gallery, error) {
	var gallery dbmysql.Gallery
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("gallery_items.id ASC") }).
		First(&gallery, "id = ?", id).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &gallery, nil
}

func (r *galleryRepository) ListGalleries(ctx context.Context, q repository.GalleryQuery) ([]dbmysql.Gallery, error) {
	galleries := []dbmysql.Gallery{}
	if (q.OwnerIDs != nil && len(q.OwnerIDs) == 0) || (q.IDs != nil && len(q.IDs) == 0) {
		return galleries, nil
	}

	tx := r.db.WithContext(ctx).Model(&dbmysql.Gallery{})
	if q.OwnerIDs != nil {
		tx = tx.Where("galleries.user_id IN ?", q.OwnerIDs)
	}
	if q.IDs != nil {
		tx = tx.Where("galleries.id IN ?", q.IDs)
	}
	if q.ViewerID != 0 {
		tx = tx.Where("(galleries.visibility = ? OR galleries.user_id = ?)", common.VisibilityPublic, q.ViewerID)
	} else {
		tx = tx.Where("galleries.visibility = ?", common.VisibilityPublic)
	}

	switch q.SortBy {
	case common.SortPopular:
		tx = tx.Order(popularOrder)
	case common.SortViews:
		tx = tx.Order("galleries.view_count DESC").Order("galleries.id ASC")
	default:
		tx = tx.Order("galleries.created_at DESC").Order("galleries.id ASC")
	}

	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	err := tx.Find(&galleries).Error
	return galleries, err
}

func (r *galleryRepository) CountUserGalleries(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Gallery{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *galleryRepository) FirstItems(ctx context.Context, galleryIDs []uint64) (map[uint64]dbmysql.GalleryItem, error) {
	out := make(map[uint64]dbmysql.GalleryItem, len(galleryIDs))
	if len(galleryIDs) == 0 {
		return out, nil
	}

	firstIDs := r.db.Model(&dbmysql.GalleryItem{}).
		Select("MIN(id)").
		Where("gallery_id IN ?", galleryIDs).
		Group("gallery_id")

	var items []dbmysql.GalleryItem
	if err := r.db.WithContext(ctx).Where("id IN (?)", firstIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.GalleryID] = item
	}
	return out, nil
}

func (r *galleryRepository) IncrementViewCount(ctx context.Context, id uint64) (int64, error) {
	var views int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&dbmysql.Gallery{}).Where("id = ?", id).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound
		}
		return tx.Model(&dbmysql.Gallery{}).Select("view_count").Where("id = ?", id).Scan(&views).Error
	})
	return views, err
}

func (r *galleryRepository) UpdateVisibility(ctx context.Context, id uint64, visibility common.Visibility) error {
	res := r.db.WithContext(ctx).Model(&dbmysql.Gallery{}).Where("id = ?", id).
		Updates(map[string]interface{}{"visibility": visibility, "updated_at": r.db.NowFunc()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *galleryRepository) DeleteGallery(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&dbmysql.GalleryItem{}, &dbmysql.Like{}, &dbmysql.Save{}, &dbmysql.Comment{}} {
			if err := tx.Where("gallery_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&dbmysql.Gallery{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound
		}
		return nil
	})
}
