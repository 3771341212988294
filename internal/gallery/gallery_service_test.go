package gallery

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"redshare/internal/activity"
	"redshare/internal/common"
	"redshare/internal/dbmysql"
	"redshare/internal/memstore"
	"redshare/internal/repository/mocks"
)

// tickClock advances one second on every read so creation order is visible.
type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fakeBlobs struct {
	deleted []string
}

func (f *fakeBlobs) Put(context.Context, string, string, io.Reader, int64) error { return nil }
func (f *fakeBlobs) Open(context.Context, string) (io.ReadCloser, common.BlobInfo, error) {
	return nil, common.BlobInfo{}, common.ErrNotFound
}
func (f *fakeBlobs) Delete(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

type fixture struct {
	store *memstore.Store
	svc   GalleryService
	blobs *fakeBlobs
	alice *dbmysql.User
	bob   *dbmysql.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &tickClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := memstore.New(memstore.WithClock(clock.Now))
	ctx := context.Background()

	alice := &dbmysql.User{Username: "alice"}
	bob := &dbmysql.User{Username: "bob"}
	require.NoError(t, store.Users().CreateUser(ctx, alice))
	require.NoError(t, store.Users().CreateUser(ctx, bob))

	blobs := &fakeBlobs{}
	svc := NewGalleryService(store.Users(), store.Galleries(),
		NewCardBuilder(store.Users(), store.Galleries()), blobs, activity.NopPublisher{})
	return &fixture{store: store, svc: svc, blobs: blobs, alice: alice, bob: bob}
}

func imageInput(title, visibility string) CreateInput {
	return CreateInput{
		Title:      title,
		Visibility: visibility,
		Items: []NewItem{
			{FileURL: MediaPathPrefix + title + ".jpg", FileType: common.MediaFileTypeImage},
		},
	}
}

func TestCreateGallery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.CreateGallery(ctx, f.alice.ID, CreateInput{
		Title:       "  Trip ",
		Description: "summer",
		Tags:        "beach, ,sun ,",
		Items: []NewItem{
			{FileURL: "/uploads/a.jpg", FileType: common.MediaFileTypeImage, Duration: "1:00"},
			{FileURL: "/uploads/b.mp4", FileType: common.MediaFileTypeVideo},
			{FileURL: "/uploads/c.mp4", ThumbnailURL: "/uploads/c.jpg", FileType: common.MediaFileTypeVideo, Duration: "0:42"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), g.ID)
	assert.Equal(t, "Trip", g.Title)
	require.NotNil(t, g.Description)
	assert.Equal(t, "summer", *g.Description)
	assert.Equal(t, []string{"beach", "sun"}, g.Tags)
	assert.Equal(t, common.VisibilityPublic, g.Visibility)

	stored, err := f.store.Galleries().GetGalleryByID(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 3)
	assert.Nil(t, stored.Items[0].Duration, "images carry no duration")
	assert.Equal(t, "/uploads/a.jpg", stored.Items[0].ThumbnailURL)
	require.NotNil(t, stored.Items[1].Duration)
	assert.Equal(t, DefaultVideoDuration, *stored.Items[1].Duration)
	assert.Equal(t, "0:42", *stored.Items[2].Duration)
	assert.Equal(t, "/uploads/c.jpg", stored.Items[2].ThumbnailURL)
}

func TestCreateGallery_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		owner   uint64
		input   CreateInput
		wantErr error
	}{
		{"no items", f.alice.ID, CreateInput{Title: "x"}, common.ErrInvalidGallery},
		{"blank title", f.alice.ID, imageInput("   ", ""), common.ErrInvalidGallery},
		{"long title", f.alice.ID, imageInput(strings.Repeat("t", 201), ""), common.ErrValidation},
		{"bad visibility", f.alice.ID, imageInput("x", "friends"), common.ErrInvalidVisibility},
		{"unknown owner", 99, imageInput("x", ""), common.ErrNotFound},
		{"bad file type", f.alice.ID, CreateInput{Title: "x", Items: []NewItem{{FileURL: "/uploads/x", FileType: "audio"}}}, common.ErrInvalidGallery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateGallery(ctx, tt.owner, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	n, _ := f.store.Galleries().CountUserGalleries(ctx, f.alice.ID)
	assert.Zero(t, n)
}

func TestListUserGalleries_PrivateOnlyForOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateGallery(ctx, f.alice.ID, imageInput("open", "public"))
	require.NoError(t, err)
	_, err = f.svc.CreateGallery(ctx, f.alice.ID, imageInput("hidden", "private"))
	require.NoError(t, err)

	own, err := f.svc.ListUserGalleries(ctx, f.alice.ID, "ALICE", common.NewPage(0, 0))
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, "hidden", own[0].Title, "newest first")
	assert.Equal(t, "alice", own[0].Username)
	require.NotNil(t, own[0].ThumbnailURL)
	assert.Equal(t, "/uploads/hidden.jpg", *own[0].ThumbnailURL)

	for _, viewer := range []uint64{0, f.bob.ID} {
		cards, err := f.svc.ListUserGalleries(ctx, viewer, "alice", common.NewPage(0, 0))
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "open", cards[0].Title)
	}

	_, err = f.svc.ListUserGalleries(ctx, 0, "nobody", common.NewPage(0, 0))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.CreateGallery(ctx, f.alice.ID, imageInput("mine", ""))
	require.NoError(t, err)

	_, err = f.svc.SetVisibility(ctx, f.bob.ID, g.ID, "private")
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = f.svc.SetVisibility(ctx, f.alice.ID, g.ID, "")
	assert.ErrorIs(t, err, common.ErrInvalidVisibility)
	_, err = f.svc.SetVisibility(ctx, f.alice.ID, 42, "private")
	assert.ErrorIs(t, err, common.ErrNotFound)

	updated, err := f.svc.SetVisibility(ctx, f.alice.ID, g.ID, "Private")
	require.NoError(t, err)
	assert.Equal(t, common.VisibilityPrivate, updated.Visibility)

	stored, _ := f.store.Galleries().GetGalleryByID(ctx, g.ID)
	assert.Equal(t, common.VisibilityPrivate, stored.Visibility)
}

func TestDeleteGallery_CascadesAndRemovesBlobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.CreateGallery(ctx, f.alice.ID, CreateInput{
		Title: "gone",
		Items: []NewItem{
			{FileURL: "/uploads/one.jpg", FileType: common.MediaFileTypeImage},
			{FileURL: "https://cdn.example.com/two.jpg", FileType: common.MediaFileTypeImage},
		},
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Likes().Add(ctx, f.bob.ID, g.ID))
	require.NoError(t, f.store.Comments().CreateComment(ctx, &dbmysql.Comment{GalleryID: g.ID, UserID: f.bob.ID, Username: "bob", Text: "hi"}))

	assert.ErrorIs(t, f.svc.DeleteGallery(ctx, f.bob.ID, g.ID), common.ErrForbidden)
	require.NoError(t, f.svc.DeleteGallery(ctx, f.alice.ID, g.ID))

	_, err = f.store.Galleries().GetGalleryByID(ctx, g.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	likes, _ := f.store.Likes().CountByGallery(ctx, g.ID)
	assert.Zero(t, likes)
	comments, _ := f.store.Comments().CountGalleryComments(ctx, g.ID)
	assert.Zero(t, comments)
	assert.Equal(t, []string{"one.jpg"}, f.blobs.deleted)

	assert.ErrorIs(t, f.svc.DeleteGallery(ctx, f.alice.ID, g.ID), common.ErrNotFound)
}

func TestCardBuilder_UnknownOwnerAndMissingItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mocks.NewMockUserRepository(ctrl)
	galleries := mocks.NewMockGalleryRepository(ctrl)
	builder := NewCardBuilder(users, galleries)
	ctx := context.Background()

	dur := "0:12"
	users.EXPECT().GetUsersByIDs(ctx, []uint64{7, 8}).Return(map[uint64]*dbmysql.User{8: {ID: 8, Username: "bob"}}, nil)
	galleries.EXPECT().FirstItems(ctx, []uint64{1, 2}).Return(map[uint64]dbmysql.GalleryItem{
		2: {ThumbnailURL: "/uploads/v.mp4", FileType: common.MediaFileTypeVideo, Duration: &dur},
	}, nil)

	cards, err := builder.Build(ctx, []dbmysql.Gallery{
		{ID: 1, Title: "orphan", UserID: 7},
		{ID: 2, Title: "clip", UserID: 8, ViewCount: 3},
	})
	require.NoError(t, err)
	require.Len(t, cards, 2)

	assert.Equal(t, "unknown", cards[0].Username)
	assert.Nil(t, cards[0].ThumbnailURL)
	assert.Nil(t, cards[0].FileType)

	assert.Equal(t, "bob", cards[1].Username)
	assert.Equal(t, common.MediaFileTypeVideo, *cards[1].FileType)
	assert.Equal(t, "0:12", *cards[1].Duration)
	assert.Equal(t, int64(3), cards[1].ViewCount)
}

func TestCardBuilder_PropagatesErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mocks.NewMockUserRepository(ctrl)
	builder := NewCardBuilder(users, mocks.NewMockGalleryRepository(ctrl))
	users.EXPECT().GetUsersByIDs(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := builder.Build(context.Background(), []dbmysql.Gallery{{ID: 1, UserID: 1}})
	assert.EqualError(t, err, "db down")

	cards, err := builder.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, cards)
}

func TestHandler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateGallery(ctx, f.alice.ID, imageInput("mine", ""))
	require.NoError(t, err)

	router := mux.NewRouter()
	NewHandler(f.svc, zap.NewNop()).RegisterRoutes(router.PathPrefix("/api").Subrouter())

	do := func(method, path, body string, viewer uint64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if viewer != 0 {
			req = req.WithContext(common.WithIdentity(req.Context(), &common.Identity{UserID: viewer}))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "/api/users/alice/content?limit=5", "", 0)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"mine"`)

	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/api/users/ghost/content", "", 0).Code)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPut, "/api/gallery/1/visibility", `{"visibility":"private"}`, 0).Code)
	assert.Equal(t, http.StatusForbidden, do(http.MethodPut, "/api/gallery/1/visibility", `{"visibility":"private"}`, f.bob.ID).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPut, "/api/gallery/1/visibility", `{"visibility":"friends"}`, f.alice.ID).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPut, "/api/gallery/abc/visibility", `{}`, f.alice.ID).Code)

	rec = do(http.MethodPut, "/api/gallery/1/visibility", `{"visibility":"private"}`, f.alice.ID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"visibility":"private"`)

	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/api/gallery/1", "", f.alice.ID).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/api/gallery/1", "", f.alice.ID).Code)
}
