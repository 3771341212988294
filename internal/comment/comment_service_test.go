package comment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"redshare/internal/activity"
	"redshare/internal/common"
	"redshare/internal/dbmysql"
	"redshare/internal/memstore"
)

type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type env struct {
	store   *memstore.Store
	svc     CommentService
	gallery *dbmysql.Gallery
	hidden  *dbmysql.Gallery
}

func newEnv(t *testing.T) *env {
	t.Helper()
	clock := &tickClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := memstore.New(memstore.WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, store.Users().CreateUser(ctx, &dbmysql.User{Username: "owner"}))
	require.NoError(t, store.Users().CreateUser(ctx, &dbmysql.User{Username: "fan"}))

	items := []dbmysql.GalleryItem{{UserID: 1, FileURL: "/uploads/a.jpg", ThumbnailURL: "/uploads/a.jpg", FileType: common.MediaFileTypeImage}}
	gallery := &dbmysql.Gallery{Title: "g", UserID: 1, Items: items}
	hidden := &dbmysql.Gallery{Title: "h", UserID: 1, Visibility: common.VisibilityPrivate, Items: items}
	require.NoError(t, store.Galleries().CreateGallery(ctx, gallery))
	require.NoError(t, store.Galleries().CreateGallery(ctx, hidden))

	svc := NewCommentService(store.Users(), store.Galleries(), store.Comments(), activity.NopPublisher{})
	return &env{store: store, svc: svc, gallery: gallery, hidden: hidden}
}

func TestCreateComment_TrimsAndSnapshotsUsername(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c, err := e.svc.CreateComment(ctx, e.gallery.ID, 2, "  nice shot  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "nice shot", c.Text)
	assert.Equal(t, "fan", c.Username)
	assert.Nil(t, c.ParentID)

	fan, _ := e.store.Users().GetUserByID(ctx, 2)
	fan.Username = "renamed"
	require.NoError(t, e.store.Users().UpdateUser(ctx, fan))

	threads, err := e.svc.GetComments(ctx, 0, e.gallery.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "fan", threads[0].Username)
}

func TestCreateComment_Rejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	root, err := e.svc.CreateComment(ctx, e.gallery.ID, 2, "root", nil)
	require.NoError(t, err)
	reply, err := e.svc.CreateComment(ctx, e.gallery.ID, 1, "reply", &root.ID)
	require.NoError(t, err)
	onHidden, err := e.svc.CreateComment(ctx, e.hidden.ID, 1, "mine", nil)
	require.NoError(t, err)

	missing := uint64(404)
	tests := []struct {
		name      string
		galleryID uint64
		author    uint64
		text      string
		parent    *uint64
		wantErr   error
	}{
		{"blank text", e.gallery.ID, 2, "   ", nil, common.ErrEmptyText},
		{"too long", e.gallery.ID, 2, strings.Repeat("x", common.MaxCommentLength+1), nil, common.ErrTextTooLong},
		{"unknown gallery", 99, 2, "hi", nil, common.ErrNotFound},
		{"private gallery", e.hidden.ID, 2, "hi", nil, common.ErrForbidden},
		{"unknown parent", e.gallery.ID, 2, "hi", &missing, common.ErrNotFound},
		{"parent in other gallery", e.gallery.ID, 1, "hi", &onHidden.ID, common.ErrNotFound},
		{"reply to reply", e.gallery.ID, 2, "hi", &reply.ID, common.ErrInvalidParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.CreateComment(ctx, tt.galleryID, tt.author, tt.text, tt.parent)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	n, _ := e.svc.CountComments(ctx, e.gallery.ID)
	assert.Equal(t, int64(2), n)
}

func TestGetComments_Ordering(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, _ := e.svc.CreateComment(ctx, e.gallery.ID, 2, "first", nil)
	second, _ := e.svc.CreateComment(ctx, e.gallery.ID, 1, "second", nil)
	_, _ = e.svc.CreateComment(ctx, e.gallery.ID, 1, "r1", &first.ID)
	_, _ = e.svc.CreateComment(ctx, e.gallery.ID, 2, "r2", &first.ID)

	threads, err := e.svc.GetComments(ctx, 0, e.gallery.ID)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	assert.Equal(t, second.ID, threads[0].ID)
	assert.Empty(t, threads[0].Replies)
	assert.Equal(t, first.ID, threads[1].ID)
	require.Len(t, threads[1].Replies, 2)
	assert.Equal(t, "r1", threads[1].Replies[0].Text)
	assert.Equal(t, "r2", threads[1].Replies[1].Text)

	_, err = e.svc.GetComments(ctx, 2, e.hidden.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = e.svc.GetComments(ctx, 1, e.hidden.ID)
	assert.NoError(t, err)
}

func TestBuildThreads_SameTimestampNewestIDFirst(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	parent := uint64(1)
	threads := BuildThreads([]dbmysql.Comment{
		{ID: 1, CreatedAt: at},
		{ID: 2, CreatedAt: at},
		{ID: 3, CreatedAt: at, ParentID: &parent},
		{ID: 4, CreatedAt: at, ParentID: func() *uint64 { v := uint64(77); return &v }()},
	})

	require.Len(t, threads, 2)
	assert.Equal(t, uint64(2), threads[0].ID)
	assert.Equal(t, uint64(1), threads[1].ID)
	require.Len(t, threads[1].Replies, 1)
	assert.Equal(t, uint64(3), threads[1].Replies[0].ID)
}

func TestHandler(t *testing.T) {
	e := newEnv(t)
	router := mux.NewRouter()
	NewHandler(e.svc, zap.NewNop()).RegisterRoutes(router.PathPrefix("/api").Subrouter())

	do := func(method, path, body string, viewer uint64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if viewer != 0 {
			req = req.WithContext(common.WithIdentity(req.Context(), &common.Identity{UserID: viewer}))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/gallery/1/comments", `{"text":"hello"}`, 2)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dbmysql.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "hello", created.Text)

	rec = do(http.MethodPost, "/api/gallery/1/comments/1/replies", `{"text":"thanks"}`, 1)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"parentId":1`)

	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/gallery/1/comments/2/replies", `{"text":"deep"}`, 2).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/gallery/1/comments", `{"text":" "}`, 2).Code)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, "/api/gallery/1/comments", `{"text":"x"}`, 0).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/api/gallery/9/comments", "", 0).Code)

	rec = do(http.MethodGet, "/api/gallery/1/comments", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	var threads []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &threads))
	require.Len(t, threads, 1)
	assert.Len(t, threads[0]["replies"], 1)
}
