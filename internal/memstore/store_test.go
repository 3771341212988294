package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redshare/internal/common"
	"redshare/internal/dbmysql"
	"redshare/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	return New(WithClock(clock.Now)), clock
}

func mustUser(t *testing.T, s *Store, name string) *dbmysql.User {
	t.Helper()
	u := &dbmysql.User{Username: name, PasswordHash: "hash"}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func mustGallery(t *testing.T, s *Store, owner uint64, title string, vis common.Visibility) *dbmysql.Gallery {
	t.Helper()
	g := &dbmysql.Gallery{
		Title:      title,
		UserID:     owner,
		Visibility: vis,
		Items: []dbmysql.GalleryItem{
			{UserID: owner, FileURL: "/uploads/" + title + "-1.jpg", ThumbnailURL: "/uploads/" + title + "-1.jpg", FileType: common.MediaFileTypeImage},
			{UserID: owner, FileURL: "/uploads/" + title + "-2.mp4", ThumbnailURL: "/uploads/" + title + "-2.mp4", FileType: common.MediaFileTypeVideo},
		},
	}
	require.NoError(t, s.Galleries().CreateGallery(context.Background(), g))
	return g
}

func titles(galleries []dbmysql.Gallery) []string {
	out := make([]string, 0, len(galleries))
	for _, g := range galleries {
		out = append(out, g.Title)
	}
	return out
}

func TestUsers_CreateAndLookup(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	alice := mustUser(t, s, "Alice")
	bob := mustUser(t, s, "bob")
	assert.Equal(t, uint64(1), alice.ID)
	assert.Equal(t, uint64(2), bob.ID)

	got, err := s.Users().GetUserByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "Alice", got.Username)

	err = s.Users().CreateUser(ctx, &dbmysql.User{Username: "alice"})
	assert.ErrorIs(t, err, common.ErrDuplicateUsername)

	_, err = s.Users().GetUserByID(ctx, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)

	users, err := s.Users().GetUsersByIDs(ctx, []uint64{1, 2, 42})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUsers_ReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, "alice")

	u, err := s.Users().GetUserByID(ctx, 1)
	require.NoError(t, err)
	u.Username = "mallory"

	again, err := s.Users().GetUserByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)
}

func TestUsers_UpdateRename(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	mustUser(t, s, "bob")

	alice.Username = "BOB"
	assert.ErrorIs(t, s.Users().UpdateUser(ctx, alice), common.ErrDuplicateUsername)

	alice.Username = "alicia"
	require.NoError(t, s.Users().UpdateUser(ctx, alice))

	_, err := s.Users().GetUserByUsername(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)
	got, err := s.Users().GetUserByUsername(ctx, "Alicia")
	require.NoError(t, err)
	assert.Equal(t, "hash", got.PasswordHash)
}

func TestUsers_ConcurrentCreateSequentialIDs(t *testing.T) {
	s, _ := newTestStore(t)
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Users().CreateUser(context.Background(), &dbmysql.User{Username: fmt.Sprintf("user_%d", i)})
		}(i)
	}
	wg.Wait()

	seen := map[uint64]bool{}
	for id := uint64(1); id <= n; id++ {
		u, err := s.Users().GetUserByID(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, seen[u.ID])
		seen[u.ID] = true
	}
	_, err := s.Users().GetUserByID(context.Background(), n+1)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFollows_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	f := s.Follows()

	require.NoError(t, f.Follow(ctx, 1, 2))
	require.NoError(t, f.Follow(ctx, 1, 2))
	require.NoError(t, f.Follow(ctx, 1, 3))

	followers, _ := f.FollowersCount(ctx, 2)
	following, _ := f.FollowingCount(ctx, 1)
	assert.Equal(t, int64(1), followers)
	assert.Equal(t, int64(2), following)

	ids, _ := f.FollowingIDs(ctx, 1)
	assert.Equal(t, []uint64{2, 3}, ids)

	require.NoError(t, f.Unfollow(ctx, 1, 2))
	require.NoError(t, f.Unfollow(ctx, 1, 2))
	ok, _ := f.IsFollowing(ctx, 1, 2)
	assert.False(t, ok)
	followers, _ = f.FollowersCount(ctx, 2)
	assert.Equal(t, int64(0), followers)
}

func TestFollows_ConcurrentFollowKeepsOneEdge(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Follows().Follow(ctx, 1, 2)
		}()
	}
	wg.Wait()

	count, _ := s.Follows().FollowersCount(ctx, 2)
	assert.Equal(t, int64(1), count)
	ids, _ := s.Follows().FollowingIDs(ctx, 1)
	assert.Equal(t, []uint64{2}, ids)
}

func TestGalleries_CreateAndGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	g := mustGallery(t, s, 1, "beach", "")

	assert.Equal(t, uint64(1), g.ID)
	assert.Equal(t, common.VisibilityPublic, g.Visibility)
	assert.Equal(t, []string{}, g.Tags)

	got, err := s.Galleries().GetGalleryByID(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "/uploads/beach-1.jpg", got.Items[0].FileURL)
	assert.Equal(t, g.ID, got.Items[1].GalleryID)
	assert.Less(t, got.Items[0].ID, got.Items[1].ID)

	first, err := s.Galleries().FirstItems(ctx, []uint64{g.ID, 77})
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, got.Items[0].ID, first[g.ID].ID)

	count, _ := s.Galleries().CountUserGalleries(ctx, 1)
	assert.Equal(t, int64(1), count)
}

func TestGalleries_ListRecentAndPrivacy(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	mustGallery(t, s, 1, "a", common.VisibilityPublic)
	clock.Advance(time.Minute)
	mustGallery(t, s, 2, "b", common.VisibilityPrivate)
	clock.Advance(time.Minute)
	mustGallery(t, s, 1, "c", common.VisibilityPublic)

	anon, err := s.Galleries().ListGalleries(ctx, repository.GalleryQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, titles(anon))

	owner, err := s.Galleries().ListGalleries(ctx, repository.GalleryQuery{ViewerID: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, titles(owner))

	byOwner, err := s.Galleries().ListGalleries(ctx, repository.GalleryQuery{OwnerIDs: []uint64{1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, titles(byOwner))

	none, err := s.Galleries().ListGalleries(ctx, repository.GalleryQuery{OwnerIDs: []uint64{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	byID, err := s.Galleries().ListGalleries(ctx, repository.GalleryQuery{IDs: []uint64{1, 2}, ViewerID: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, titles(byID))
}

func TestGalleries_SortPopularIsStable(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"g1", "g2", "g3", "g4"} {
		mustGallery(t, s, 1, title, common.VisibilityPublic)
	}
	require.NoError(t, s.Likes().Add(ctx, 10, 3))
	require.NoError(t, s.Likes().Add(ctx, 11, 3))
	require.NoError(t, s.Likes().Add(ctx, 10, 2))
	require.NoError(t, s.Likes().Add(ctx, 10, 4))

	got, err := s.Galleries().ListGalleries(ctx, repository.GalleryQuery{SortBy: common.SortPopular})
	require.NoError(t, err)
	assert.Equal(t, []string{"g3", "g2", "g4", "g1"}, titles(got))
}

func TestGalleries_SortViews(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"g1", "g2", "g3"} {
		mustGallery(t, s, 1, title, common.VisibilityPublic)
	}
	for i := 0; i < 3; i++ {
		_, err := s.Galleries().IncrementViewCount(ctx, 2)
		require.NoError(t, err)
	}
	views, err := s.Galleries().IncrementViewCount(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)

	got, err := s.Galleries().ListGalleries(ctx, repository.GalleryQuery{SortBy: common.SortViews})
	require.NoError(t, err)
	assert.Equal(t, []string{"g2", "g3", "g1"}, titles(got))

	_, err = s.Galleries().IncrementViewCount(ctx, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGalleries_PaginationCoversEveryItemOnce(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 13; i++ {
		if i%3 == 0 {
			clock.Advance(time.Second)
		}
		g := mustGallery(t, s, 1, fmt.Sprintf("g%02d", i), common.VisibilityPublic)
		if i%2 == 0 {
			require.NoError(t, s.Likes().Add(ctx, 5, g.ID))
		}
	}

	for _, sortBy := range []common.SortBy{common.SortRecent, common.SortPopular, common.SortViews} {
		full, err := s.Galleries().ListGalleries(ctx, repository.GalleryQuery{SortBy: sortBy})
		require.NoError(t, err)
		require.Len(t, full, 13)

		var paged []string
		for offset := 0; offset < 13; offset += 4 {
			page, err := s.Galleries().ListGalleries(ctx, repository.GalleryQuery{SortBy: sortBy, Limit: 4, Offset: offset})
			require.NoError(t, err)
			paged = append(paged, titles(page)...)
		}
		assert.Equal(t, titles(full), paged, "sort %s", sortBy)
	}

	past, err := s.Galleries().ListGalleries(ctx, repository.GalleryQuery{Offset: 100})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestGalleries_DeleteCascades(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	g := mustGallery(t, s, 1, "gone", common.VisibilityPublic)
	keep := mustGallery(t, s, 1, "kept", common.VisibilityPublic)
	require.NoError(t, s.Likes().Add(ctx, 2, g.ID))
	require.NoError(t, s.Saves().Add(ctx, 2, g.ID))
	require.NoError(t, s.Saves().Add(ctx, 2, keep.ID))
	require.NoError(t, s.Comments().CreateComment(ctx, &dbmysql.Comment{GalleryID: g.ID, UserID: 2, Username: "bob", Text: "hi"}))

	require.NoError(t, s.Galleries().DeleteGallery(ctx, g.ID))

	_, err := s.Galleries().GetGalleryByID(ctx, g.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	likes, _ := s.Likes().CountByGallery(ctx, g.ID)
	assert.Zero(t, likes)
	saved, _ := s.Saves().GalleryIDsByUser(ctx, 2)
	assert.Equal(t, []uint64{keep.ID}, saved)
	comments, _ := s.Comments().ListGalleryComments(ctx, g.ID)
	assert.Empty(t, comments)
	count, _ := s.Galleries().CountUserGalleries(ctx, 1)
	assert.Equal(t, int64(1), count)

	assert.ErrorIs(t, s.Galleries().DeleteGallery(ctx, g.ID), common.ErrNotFound)
}

func TestGalleries_UpdateVisibility(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	g := mustGallery(t, s, 1, "g", common.VisibilityPublic)

	require.NoError(t, s.Galleries().UpdateVisibility(ctx, g.ID, common.VisibilityPrivate))
	list, _ := s.Galleries().ListGalleries(ctx, repository.GalleryQuery{})
	assert.Empty(t, list)

	assert.ErrorIs(t, s.Galleries().UpdateVisibility(ctx, 42, common.VisibilityPublic), common.ErrNotFound)
}

func TestLedger_IdempotentAndIndependent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	g := mustGallery(t, s, 1, "g", common.VisibilityPublic)

	require.NoError(t, s.Likes().Add(ctx, 2, g.ID))
	require.NoError(t, s.Likes().Add(ctx, 2, g.ID))
	count, _ := s.Likes().CountByGallery(ctx, g.ID)
	assert.Equal(t, int64(1), count)

	saved, _ := s.Saves().Exists(ctx, 2, g.ID)
	assert.False(t, saved)

	require.NoError(t, s.Likes().Remove(ctx, 2, g.ID))
	require.NoError(t, s.Likes().Remove(ctx, 2, g.ID))
	liked, _ := s.Likes().Exists(ctx, 2, g.ID)
	assert.False(t, liked)

	assert.ErrorIs(t, s.Likes().Add(ctx, 2, 99), common.ErrNotFound)
}

func TestLedger_ConcurrentLikes(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	g := mustGallery(t, s, 1, "g", common.VisibilityPublic)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Likes().Add(ctx, 2, g.ID)
		}()
		go func(u uint64) {
			defer wg.Done()
			_ = s.Likes().Add(ctx, u, g.ID)
		}(uint64(100 + i))
	}
	wg.Wait()

	count, _ := s.Likes().CountByGallery(ctx, g.ID)
	assert.Equal(t, int64(21), count)
}

func TestComments_CreationOrder(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	g := mustGallery(t, s, 1, "g", common.VisibilityPublic)

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		require.NoError(t, s.Comments().CreateComment(ctx, &dbmysql.Comment{GalleryID: g.ID, UserID: 1, Username: "a", Text: fmt.Sprint(i)}))
	}
	list, err := s.Comments().ListGalleryComments(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "0", list[0].Text)
	assert.Equal(t, "2", list[2].Text)

	count, _ := s.Comments().CountGalleryComments(ctx, g.ID)
	assert.Equal(t, int64(3), count)

	err = s.Comments().CreateComment(ctx, &dbmysql.Comment{GalleryID: 42, Text: "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
