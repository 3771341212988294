// Package memstore is the in-memory backend of the repository contract.
//
// Every collection has its own RWMutex. Operations touching more than one
// collection acquire locks in a fixed order: users, follows, galleries
// (which also guards gallery items), likes, saves, comments.
package memstore

import (
	"time"

	"redshare/internal/repository"
)

type Option func(*Store)

// WithClock replaces time.Now for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	now func() time.Time

	users     *Users
	follows   *Follows
	galleries *Galleries
	likes     *Ledger
	saves     *Ledger
	comments  *Comments
}

func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	s.users = newUsers(s.now)
	s.follows = newFollows(s.now)
	s.likes = newLedger(s.now)
	s.saves = newLedger(s.now)
	s.comments = newComments(s.now)
	s.galleries = newGalleries(s.now, s.likes, s.saves, s.comments)
	s.likes.galleries = s.galleries
	s.saves.galleries = s.galleries
	s.comments.galleries = s.galleries
	return s
}

func (s *Store) Users() *Users         { return s.users }
func (s *Store) Follows() *Follows     { return s.follows }
func (s *Store) Galleries() *Galleries { return s.galleries }
func (s *Store) Likes() *Ledger        { return s.likes }
func (s *Store) Saves() *Ledger        { return s.saves }
func (s *Store) Comments() *Comments   { return s.comments }

// Repositories exposes the store through the repository contract.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Users:     s.users,
		Follows:   s.follows,
		Galleries: s.galleries,
		Likes:     s.likes,
		Saves:     s.saves,
		Comments:  s.comments,
		Close:     func() error { return nil },
	}
}

var (
	_ repository.UserRepository    = (*Users)(nil)
	_ repository.FollowRepository  = (*Follows)(nil)
	_ repository.GalleryRepository = (*Galleries)(nil)
	_ repository.LedgerRepository  = (*Ledger)(nil)
	_ repository.CommentRepository = (*Comments)(nil)
)

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyUintPtr(p *uint64) *uint64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func removeID(ids []uint64, id uint64) []uint64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
