package dbmysql

import "time"

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	ID          uint64    `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	FollowerID  uint64    `gorm:"column:follower_id;not null;uniqueIndex:idx_follow_pair" json:"followerId"`
	FollowingID uint64    `gorm:"column:following_id;not null;uniqueIndex:idx_follow_pair;index" json:"followingId"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Follow) TableName() string { return "follows" }

type Like struct {
	ID        uint64    `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:idx_like_pair" json:"userId"`
	GalleryID uint64    `gorm:"column:gallery_id;not null;uniqueIndex:idx_like_pair;index" json:"galleryId"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Like) TableName() string { return "likes" }

type Save struct {
	ID        uint64    `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:idx_save_pair" json:"userId"`
	GalleryID uint64    `gorm:"column:gallery_id;not null;uniqueIndex:idx_save_pair;index" json:"galleryId"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Save) TableName() string { return "saves" }

type Comment struct {
	ID        uint64    `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	GalleryID uint64    `gorm:"column:gallery_id;not null;index" json:"galleryId"`
	UserID    uint64    `gorm:"column:user_id;not null" json:"userId"`
	Username  string    `gorm:"column:username;size:50;not null" json:"username"`
	Text      string    `gorm:"column:text;type:text;not null" json:"text"`
	ParentID  *uint64   `gorm:"column:parent_id;index" json:"parentId"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Comment) TableName() string { return "comments" }

// Models lists every table for AutoMigrate.
func Models() []interface{} {
	return []interface{}{&User{}, &Follow{}, &Gallery{}, &GalleryItem{}, &Like{}, &Save{}, &Comment{}}
}
