package memstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"redshare/internal/common"
	"redshare/internal/dbmysql"
)

type Users struct {
	mu    sync.RWMutex
	seq   atomic.Uint64
	now   func() time.Time
	byID  map[uint64]*dbmysql.User
	byKey map[string]uint64
}

func newUsers(now func() time.Time) *Users {
	return &Users{
		now:   now,
		byID:  make(map[uint64]*dbmysql.User),
		byKey: make(map[string]uint64),
	}
}

func cloneUser(u *dbmysql.User) *dbmysql.User {
	c := *u
	c.Email = copyStringPtr(u.Email)
	c.ProfileImage = copyStringPtr(u.ProfileImage)
	return &c
}

func (s *Users) CreateUser(_ context.Context, user *dbmysql.User) error {
	key := common.UsernameKey(user.Username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byKey[key]; taken {
		return common.ErrDuplicateUsername
	}

	now := s.now()
	user.ID = s.seq.Add(1)
	user.UsernameKey = key
	user.CreatedAt = now
	user.UpdatedAt = now

	s.byID[user.ID] = cloneUser(user)
	s.byKey[key] = user.ID
	return nil
}

func (s *Users) GetUserByID(_ context.Context, id uint64) (*dbmysql.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Users) GetUserByUsername(_ context.Context, username string) (*dbmysql.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[common.UsernameKey(username)]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(s.byID[id]), nil
}

func (s *Users) GetUsersByIDs(_ context.Context, ids []uint64) (map[uint64]*dbmysql.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uint64]*dbmysql.User, len(ids))
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (s *Users) UpdateUser(_ context.Context, user *dbmysql.User) error {
	key := common.UsernameKey(user.Username)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[user.ID]
	if !ok {
		return common.ErrNotFound
	}
	if owner, taken := s.byKey[key]; taken && owner != user.ID {
		return common.ErrDuplicateUsername
	}

	delete(s.byKey, current.UsernameKey)
	s.byKey[key] = user.ID

	updated := cloneUser(user)
	updated.UsernameKey = key
	updated.PasswordHash = current.PasswordHash
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.now()
	s.byID[user.ID] = updated

	user.UsernameKey = key
	user.UpdatedAt = updated.UpdatedAt
	return nil
}
