package memstore

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"redshare/internal/common"
	"redshare/internal/dbmysql"
	"redshare/internal/repository"
)

type galleryRecord struct {
	gallery dbmysql.Gallery // Items always nil here
	items   []dbmysql.GalleryItem
}

// Galleries guards galleries and their items under one lock.
type Galleries struct {
	mu      sync.RWMutex
	seq     atomic.Uint64
	itemSeq atomic.Uint64
	now     func() time.Time

	byID    map[uint64]*galleryRecord
	order   []uint64 // ascending ids
	byOwner map[uint64]int64

	likes    *Ledger
	saves    *Ledger
	comments *Comments
}

func newGalleries(now func() time.Time, likes, saves *Ledger, comments *Comments) *Galleries {
	return &Galleries{
		now:      now,
		byID:     make(map[uint64]*galleryRecord),
		byOwner:  make(map[uint64]int64),
		likes:    likes,
		saves:    saves,
		comments: comments,
	}
}

func cloneGallery(g *dbmysql.Gallery) dbmysql.Gallery {
	c := *g
	c.Description = copyStringPtr(g.Description)
	if g.Tags != nil {
		c.Tags = append([]string(nil), g.Tags...)
	}
	c.Items = nil
	return c
}

func cloneItem(it dbmysql.GalleryItem) dbmysql.GalleryItem {
	it.Duration = copyStringPtr(it.Duration)
	return it
}

func (s *Galleries) exists(id uint64) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *Galleries) CreateGallery(_ context.Context, gallery *dbmysql.Gallery) error {
	now := s.now()
	if gallery.Visibility == "" {
		gallery.Visibility = common.VisibilityPublic
	}
	if gallery.Tags == nil {
		gallery.Tags = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gallery.ID = s.seq.Add(1)
	gallery.CreatedAt = now
	gallery.UpdatedAt = now

	rec := &galleryRecord{gallery: cloneGallery(gallery)}
	for i := range gallery.Items {
		item := &gallery.Items[i]
		item.ID = s.itemSeq.Add(1)
		item.GalleryID = gallery.ID
		item.CreatedAt = now
		rec.items = append(rec.items, cloneItem(*item))
	}

	s.byID[gallery.ID] = rec
	s.order = append(s.order, gallery.ID)
	s.byOwner[gallery.UserID]++
	return nil
}

func (s *Galleries) GetGalleryByID(_ context.Context, id uint64) (*dbmysql.Gallery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	g := cloneGallery(&rec.gallery)
	g.Items = make([]dbmysql.GalleryItem, 0, len(rec.items))
	for _, it := range rec.items {
		g.Items = append(g.Items, cloneItem(it))
	}
	return &g, nil
}

func idSet(ids []uint64) map[uint64]struct{} {
	if ids == nil {
		return nil
	}
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s *Galleries) ListGalleries(_ context.Context, q repository.GalleryQuery) ([]dbmysql.Gallery, error) {
	out := []dbmysql.Gallery{}
	if (q.OwnerIDs != nil && len(q.OwnerIDs) == 0) || (q.IDs != nil && len(q.IDs) == 0) {
		return out, nil
	}
	owners, ids := idSet(q.OwnerIDs), idSet(q.IDs)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*dbmysql.Gallery, 0)
	for _, id := range s.order {
		g := &s.byID[id].gallery
		if owners != nil {
			if _, ok := owners[g.UserID]; !ok {
				continue
			}
		}
		if ids != nil {
			if _, ok := ids[g.ID]; !ok {
				continue
			}
		}
		if !g.IsVisibleTo(q.ViewerID) {
			continue
		}
		matched = append(matched, g)
	}

	// stable over ascending ids, so ties keep insertion order
	switch q.SortBy {
	case common.SortPopular:
		counts := s.likes.countsFor(matched)
		sort.SliceStable(matched, func(i, j int) bool {
			return counts[matched[i].ID] > counts[matched[j].ID]
		})
	case common.SortViews:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].ViewCount > matched[j].ViewCount
		})
	default:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	start := q.Offset
	if start < 0 {
		start = 0
	}
	if start >= len(matched) {
		return out, nil
	}
	end := len(matched)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	for _, g := range matched[start:end] {
		out = append(out, cloneGallery(g))
	}
	return out, nil
}

func (s *Galleries) CountUserGalleries(_ context.Context, userID uint64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byOwner[userID], nil
}

func (s *Galleries) FirstItems(_ context.Context, galleryIDs []uint64) (map[uint64]dbmysql.GalleryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uint64]dbmysql.GalleryItem, len(galleryIDs))
	for _, id := range galleryIDs {
		if rec, ok := s.byID[id]; ok && len(rec.items) > 0 {
			out[id] = cloneItem(rec.items[0])
		}
	}
	return out, nil
}

func (s *Galleries) IncrementViewCount(_ context.Context, id uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return 0, common.ErrNotFound
	}
	rec.gallery.ViewCount++
	return rec.gallery.ViewCount, nil
}

func (s *Galleries) UpdateVisibility(_ context.Context, id uint64, visibility common.Visibility) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	rec.gallery.Visibility = visibility
	rec.gallery.UpdatedAt = s.now()
	return nil
}

func (s *Galleries) DeleteGallery(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return common.ErrNotFound
	}

	s.likes.removeGallery(id)
	s.saves.removeGallery(id)
	s.comments.removeGallery(id)

	delete(s.byID, id)
	s.order = removeID(s.order, id)
	if s.byOwner[rec.gallery.UserID]--; s.byOwner[rec.gallery.UserID] <= 0 {
		delete(s.byOwner, rec.gallery.UserID)
	}
	return nil
}
