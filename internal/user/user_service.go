package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"redshare/internal/activity"
	"redshare/internal/common"
	"redshare/internal/dbmysql"
	"redshare/internal/repository"
)

// Profile is a user with counters derived on read.
type Profile struct {
	ID             uint64    `json:"id"`
	Username       string    `json:"username"`
	Email          *string   `json:"email,omitempty"`
	ProfileImage   *string   `json:"profileImage"`
	CreatedAt      time.Time `json:"createdAt"`
	FollowersCount int64     `json:"followersCount"`
	FollowingCount int64     `json:"followingCount"`
	ContentCount   int64     `json:"contentCount"`
	// IsFollowing is set only when a signed-in viewer looks at someone else.
	IsFollowing *bool `json:"isFollowing,omitempty"`
}

// UpdateProfileInput fields left nil are not changed; an empty string clears
// email and profile image.
type UpdateProfileInput struct {
	Username     *string `json:"username"`
	Email        *string `json:"email"`
	ProfileImage *string `json:"profileImage"`
}

//go:generate mockgen -source=user_service.go -destination=mock_user_service_test.go -package=user

type UserService interface {
	RegisterUser(ctx context.Context, username, email, password string) (*dbmysql.User, string, error)
	LoginUser(ctx context.Context, username, password string) (*dbmysql.User, string, error)
	Logout(ctx context.Context, identity *common.Identity) error
	GetCurrentUser(ctx context.Context, userID uint64) (*Profile, error)
	GetProfile(ctx context.Context, viewerID uint64, username string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uint64, in UpdateProfileInput) (*Profile, error)
}

type userService struct {
	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	galleryRepo repository.GalleryRepository
	tokens      *common.TokenManager
	revoker     common.TokenRevoker
	publisher   activity.Publisher
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	galleryRepo repository.GalleryRepository,
	tokens *common.TokenManager,
	revoker common.TokenRevoker,
	publisher activity.Publisher,
) UserService {
	return &userService{
		userRepo:    userRepo,
		followRepo:  followRepo,
		galleryRepo: galleryRepo,
		tokens:      tokens,
		revoker:     revoker,
		publisher:   publisher,
	}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *userService) RegisterUser(ctx context.Context, username, email, password string) (*dbmysql.User, string, error) {
	username = strings.TrimSpace(username)
	if err := common.ValidateUsername(username); err != nil {
		return nil, "", err
	}
	if err := common.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, "", err
	}

	hashed, err := common.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &dbmysql.User{
		Username:     username,
		Email:        optionalString(email),
		PasswordHash: hashed,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.publisher.Publish(activity.NewEvent(activity.UserRegistered, user.ID))
	return user, token, nil
}

func (s *userService) LoginUser(ctx context.Context, username, password string) (*dbmysql.User, string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, "", common.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return nil, "", common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if err := common.CheckPassword(password, user.PasswordHash); err != nil {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (s *userService) Logout(ctx context.Context, identity *common.Identity) error {
	if identity == nil || identity.Claims == nil {
		return common.ErrUnauthorized
	}
	expiresAt := time.Now().Add(24 * time.Hour)
	if identity.Claims.ExpiresAt != nil {
		expiresAt = identity.Claims.ExpiresAt.Time
	}
	return s.revoker.Revoke(ctx, identity.TokenID, expiresAt)
}

func (s *userService) GetCurrentUser(ctx context.Context, userID uint64) (*Profile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, userID, user)
}

func (s *userService) GetProfile(ctx context.Context, viewerID uint64, username string) (*Profile, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, viewerID, user)
}

func (s *userService) buildProfile(ctx context.Context, viewerID uint64, user *dbmysql.User) (*Profile, error) {
	followers, err := s.followRepo.FollowersCount(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.FollowingCount(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	content, err := s.galleryRepo.CountUserGalleries(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		ID:             user.ID,
		Username:       user.Username,
		ProfileImage:   user.ProfileImage,
		CreatedAt:      user.CreatedAt,
		FollowersCount: followers,
		FollowingCount: following,
		ContentCount:   content,
	}
	if viewerID == user.ID {
		profile.Email = user.Email
	}
	if viewerID != 0 && viewerID != user.ID {
		isFollowing, err := s.followRepo.IsFollowing(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
		profile.IsFollowing = &isFollowing
	}
	return profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint64, in UpdateProfileInput) (*Profile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if err := common.ValidateUsername(name); err != nil {
			return nil, err
		}
		user.Username = name
	}
	if in.Email != nil {
		if err := common.ValidateEmail(*in.Email); err != nil {
			return nil, err
		}
		user.Email = optionalString(*in.Email)
	}
	if in.ProfileImage != nil {
		user.ProfileImage = optionalString(*in.ProfileImage)
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, userID, user)
}
