package memstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"redshare/internal/common"
	"redshare/internal/dbmysql"
)

type Comments struct {
	mu        sync.RWMutex
	seq       atomic.Uint64
	now       func() time.Time
	byID      map[uint64]*dbmysql.Comment
	byGallery map[uint64][]uint64 // creation order

	galleries *Galleries
}

func newComments(now func() time.Time) *Comments {
	return &Comments{
		now:       now,
		byID:      make(map[uint64]*dbmysql.Comment),
		byGallery: make(map[uint64][]uint64),
	}
}

func cloneComment(c *dbmysql.Comment) dbmysql.Comment {
	out := *c
	out.ParentID = copyUintPtr(c.ParentID)
	return out
}

func (s *Comments) CreateComment(_ context.Context, comment *dbmysql.Comment) error {
	s.galleries.mu.RLock()
	defer s.galleries.mu.RUnlock()
	if !s.galleries.exists(comment.GalleryID) {
		return common.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	comment.ID = s.seq.Add(1)
	comment.CreatedAt = s.now()

	stored := cloneComment(comment)
	s.byID[comment.ID] = &stored
	s.byGallery[comment.GalleryID] = append(s.byGallery[comment.GalleryID], comment.ID)
	return nil
}

func (s *Comments) GetCommentByID(_ context.Context, id uint64) (*dbmysql.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := cloneComment(c)
	return &out, nil
}

func (s *Comments) ListGalleryComments(_ context.Context, galleryID uint64) ([]dbmysql.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byGallery[galleryID]
	out := make([]dbmysql.Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneComment(s.byID[id]))
	}
	return out, nil
}

func (s *Comments) CountGalleryComments(_ context.Context, galleryID uint64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byGallery[galleryID])), nil
}

// removeGallery is called with the galleries write lock held.
func (s *Comments) removeGallery(galleryID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byGallery[galleryID] {
		delete(s.byID, id)
	}
	delete(s.byGallery, galleryID)
}
