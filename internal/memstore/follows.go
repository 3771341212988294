package memstore

import (
	"context"
	"sync"
	"time"
)

type followKey struct {
	follower, following uint64
}

type Follows struct {
	mu        sync.RWMutex
	now       func() time.Time
	edges     map[followKey]time.Time
	following map[uint64][]uint64 // follower -> followed ids, in follow order
	followers map[uint64]int64
}

func newFollows(now func() time.Time) *Follows {
	return &Follows{
		now:       now,
		edges:     make(map[followKey]time.Time),
		following: make(map[uint64][]uint64),
		followers: make(map[uint64]int64),
	}
}

func (s *Follows) Follow(_ context.Context, followerID, followingID uint64) error {
	key := followKey{followerID, followingID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[key]; ok {
		return nil
	}
	s.edges[key] = s.now()
	s.following[followerID] = append(s.following[followerID], followingID)
	s.followers[followingID]++
	return nil
}

func (s *Follows) Unfollow(_ context.Context, followerID, followingID uint64) error {
	key := followKey{followerID, followingID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[key]; !ok {
		return nil
	}
	delete(s.edges, key)
	s.following[followerID] = removeID(s.following[followerID], followingID)
	if len(s.following[followerID]) == 0 {
		delete(s.following, followerID)
	}
	if s.followers[followingID]--; s.followers[followingID] <= 0 {
		delete(s.followers, followingID)
	}
	return nil
}

func (s *Follows) IsFollowing(_ context.Context, followerID, followingID uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.edges[followKey{followerID, followingID}]
	return ok, nil
}

func (s *Follows) FollowersCount(_ context.Context, userID uint64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.followers[userID], nil
}

func (s *Follows) FollowingCount(_ context.Context, userID uint64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.following[userID])), nil
}

func (s *Follows) FollowingIDs(_ context.Context, userID uint64) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uint64, len(s.following[userID]))
	copy(ids, s.following[userID])
	return ids, nil
}
