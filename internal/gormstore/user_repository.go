package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"redshare/internal/common"
	"redshare/internal/dbmysql"
	"redshare/internal/repository"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *dbmysql.User) error {
	user.UsernameKey = common.UsernameKey(user.Username)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&dbmysql.User{}).Where("username_key = ?", user.UsernameKey).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return common.ErrDuplicateUsername
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return common.ErrDuplicateUsername
			}
			return err
		}
		return nil
	})
}

func (r *userRepository) GetUserByID(ctx context.Context, id uint64) (*dbmysql.User, error) {
	var user dbmysql.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("username_key = ?", common.UsernameKey(username)).First(&user).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *userRepository) GetUsersByIDs(ctx context.Context, ids []uint64) (map[uint64]*dbmysql.User, error) {
	out := make(map[uint64]*dbmysql.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []dbmysql.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *dbmysql.User) error {
	user.UsernameKey = common.UsernameKey(user.Username)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&dbmysql.User{}).
			Where("username_key = ? AND id <> ?", user.UsernameKey, user.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return common.ErrDuplicateUsername
		}
		res := tx.Model(&dbmysql.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"username":      user.Username,
			"username_key":  user.UsernameKey,
			"email":         user.Email,
			"profile_image": user.ProfileImage,
			"updated_at":    tx.NowFunc(),
		})
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return common.ErrDuplicateUsername
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound
		}
		return nil
	})
}
