package memstore

import (
	"context"
	"sync"
	"time"

	"redshare/internal/common"
	"redshare/internal/dbmysql"
)

type ledgerKey struct {
	userID, galleryID uint64
}

// Ledger is a set of (user, gallery) pairs, used for likes and saves.
type Ledger struct {
	mu        sync.RWMutex
	now       func() time.Time
	pairs     map[ledgerKey]time.Time
	byGallery map[uint64]map[uint64]struct{}
	byUser    map[uint64][]uint64 // in the order the user added them

	galleries *Galleries
}

func newLedger(now func() time.Time) *Ledger {
	return &Ledger{
		now:       now,
		pairs:     make(map[ledgerKey]time.Time),
		byGallery: make(map[uint64]map[uint64]struct{}),
		byUser:    make(map[uint64][]uint64),
	}
}

func (l *Ledger) Add(_ context.Context, userID, galleryID uint64) error {
	l.galleries.mu.RLock()
	defer l.galleries.mu.RUnlock()
	if !l.galleries.exists(galleryID) {
		return common.ErrNotFound
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := ledgerKey{userID, galleryID}
	if _, ok := l.pairs[key]; ok {
		return nil
	}
	l.pairs[key] = l.now()
	if l.byGallery[galleryID] == nil {
		l.byGallery[galleryID] = make(map[uint64]struct{})
	}
	l.byGallery[galleryID][userID] = struct{}{}
	l.byUser[userID] = append(l.byUser[userID], galleryID)
	return nil
}

func (l *Ledger) Remove(_ context.Context, userID, galleryID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeLocked(userID, galleryID)
	return nil
}

func (l *Ledger) removeLocked(userID, galleryID uint64) {
	key := ledgerKey{userID, galleryID}
	if _, ok := l.pairs[key]; !ok {
		return
	}
	delete(l.pairs, key)
	delete(l.byGallery[galleryID], userID)
	if len(l.byGallery[galleryID]) == 0 {
		delete(l.byGallery, galleryID)
	}
	l.byUser[userID] = removeID(l.byUser[userID], galleryID)
	if len(l.byUser[userID]) == 0 {
		delete(l.byUser, userID)
	}
}

func (l *Ledger) Exists(_ context.Context, userID, galleryID uint64) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.pairs[ledgerKey{userID, galleryID}]
	return ok, nil
}

func (l *Ledger) CountByGallery(_ context.Context, galleryID uint64) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.byGallery[galleryID])), nil
}

func (l *Ledger) GalleryIDsByUser(_ context.Context, userID uint64) ([]uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]uint64, len(l.byUser[userID]))
	copy(ids, l.byUser[userID])
	return ids, nil
}

// countsFor is called with the galleries lock held.
func (l *Ledger) countsFor(galleries []*dbmysql.Gallery) map[uint64]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[uint64]int, len(galleries))
	for _, g := range galleries {
		counts[g.ID] = len(l.byGallery[g.ID])
	}
	return counts
}

// removeGallery is called with the galleries write lock held.
func (l *Ledger) removeGallery(galleryID uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for userID := range l.byGallery[galleryID] {
		l.removeLocked(userID, galleryID)
	}
}
