// Package social manages the directed follow graph between users.
package social

import (
	"context"

	"redshare/internal/activity"
	"redshare/internal/common"
	"redshare/internal/repository"
)

type SocialService interface {
	Follow(ctx context.Context, followerID, followingID uint64) error
	Unfollow(ctx context.Context, followerID, followingID uint64) error
	FollowByUsername(ctx context.Context, followerID uint64, username string) error
	UnfollowByUsername(ctx context.Context, followerID uint64, username string) error
	IsFollowing(ctx context.Context, followerID, followingID uint64) (bool, error)
	FollowingIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

type socialService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	publisher  activity.Publisher
}

func NewSocialService(userRepo repository.UserRepository, followRepo repository.FollowRepository, publisher activity.Publisher) SocialService {
	return &socialService{userRepo: userRepo, followRepo: followRepo, publisher: publisher}
}

func (s *socialService) Follow(ctx context.Context, followerID, followingID uint64) error {
	if followerID == followingID {
		return common.ErrSelfFollow
	}
	if _, err := s.userRepo.GetUserByID(ctx, followingID); err != nil {
		return err
	}

	already, err := s.followRepo.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if err := s.followRepo.Follow(ctx, followerID, followingID); err != nil {
		return err
	}
	if !already {
		s.publisher.Publish(activity.NewEvent(activity.UserFollowed, followerID).WithTargetUser(followingID))
	}
	return nil
}

func (s *socialService) Unfollow(ctx context.Context, followerID, followingID uint64) error {
	if _, err := s.userRepo.GetUserByID(ctx, followingID); err != nil {
		return err
	}

	was, err := s.followRepo.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if err := s.followRepo.Unfollow(ctx, followerID, followingID); err != nil {
		return err
	}
	if was {
		s.publisher.Publish(activity.NewEvent(activity.UserUnfollowed, followerID).WithTargetUser(followingID))
	}
	return nil
}

func (s *socialService) FollowByUsername(ctx context.Context, followerID uint64, username string) error {
	target, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.Follow(ctx, followerID, target.ID)
}

func (s *socialService) UnfollowByUsername(ctx context.Context, followerID uint64, username string) error {
	target, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.Unfollow(ctx, followerID, target.ID)
}

func (s *socialService) IsFollowing(ctx context.Context, followerID, followingID uint64) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followingID)
}

func (s *socialService) FollowingIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	return s.followRepo.FollowingIDs(ctx, userID)
}
