package dbmysql

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	Username     string    `gorm:"column:username;size:50;not null" json:"username"`
	UsernameKey  string    `gorm:"column:username_key;uniqueIndex;size:50;not null" json:"-"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	Email        *string   `gorm:"column:email;size:255" json:"email"`
	ProfileImage *string   `gorm:"column:profile_image;size:512" json:"profileImage"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }
