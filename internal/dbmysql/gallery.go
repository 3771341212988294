package dbmysql

import (
	"time"

	"redshare/internal/common"
)

type Gallery struct {
	ID          uint64            `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	Title       string            `gorm:"column:title;size:200;not null" json:"title"`
	Description *string           `gorm:"column:description;type:text" json:"description"`
	UserID      uint64            `gorm:"column:user_id;index;not null" json:"userId"`
	Tags        []string          `gorm:"column:tags;type:text;serializer:json" json:"tags"`
	Visibility  common.Visibility `gorm:"column:visibility;size:16;not null;default:public" json:"visibility"`
	ViewCount   int64             `gorm:"column:view_count;not null;default:0" json:"viewCount"`
	CreatedAt   time.Time         `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"column:updated_at" json:"updatedAt"`

	Items []GalleryItem `gorm:"foreignKey:GalleryID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Gallery) TableName() string { return "galleries" }

// IsVisibleTo reports whether viewerID (0 for anonymous) may see the gallery.
func (g *Gallery) IsVisibleTo(viewerID uint64) bool {
	return g.Visibility != common.VisibilityPrivate || (viewerID != 0 && viewerID == g.UserID)
}

type GalleryItem struct {
	ID           uint64               `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	GalleryID    uint64               `gorm:"column:gallery_id;index;not null" json:"galleryId"`
	UserID       uint64               `gorm:"column:user_id;not null" json:"userId"`
	FileURL      string               `gorm:"column:file_url;size:512;not null" json:"fileUrl"`
	ThumbnailURL string               `gorm:"column:thumbnail_url;size:512;not null" json:"thumbnailUrl"`
	FileType     common.MediaFileType `gorm:"column:file_type;size:16;not null" json:"fileType"`
	Duration     *string              `gorm:"column:duration;size:16" json:"duration,omitempty"`
	CreatedAt    time.Time            `gorm:"column:created_at" json:"createdAt"`
}

func (GalleryItem) TableName() string { return "gallery_items" }
