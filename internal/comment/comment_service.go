// Package comment stores flat comments and rebuilds them into two-level threads.
package comment

import (
	"context"
	"sort"

	"redshare/internal/activity"
	"redshare/internal/common"
	"redshare/internal/dbmysql"
	"redshare/internal/repository"
)

// Reply has no replies of its own, so a thread is at most two levels deep.
type Reply = dbmysql.Comment

type Thread struct {
	dbmysql.Comment
	Replies []Reply `json:"replies"`
}

type CommentService interface {
	// CreateComment adds a root comment, or a reply when parentID is set.
	CreateComment(ctx context.Context, galleryID, authorID uint64, text string, parentID *uint64) (*dbmysql.Comment, error)
	GetComments(ctx context.Context, viewerID, galleryID uint64) ([]Thread, error)
	CountComments(ctx context.Context, galleryID uint64) (int64, error)
}

type commentService struct {
	userRepo    repository.UserRepository
	galleryRepo repository.GalleryRepository
	commentRepo repository.CommentRepository
	publisher   activity.Publisher
}

func NewCommentService(
	userRepo repository.UserRepository,
	galleryRepo repository.GalleryRepository,
	commentRepo repository.CommentRepository,
	publisher activity.Publisher,
) CommentService {
	return &commentService{
		userRepo:    userRepo,
		galleryRepo: galleryRepo,
		commentRepo: commentRepo,
		publisher:   publisher,
	}
}

func (s *commentService) visibleGallery(ctx context.Context, viewerID, galleryID uint64) (*dbmysql.Gallery, error) {
	gallery, err := s.galleryRepo.GetGalleryByID(ctx, galleryID)
	if err != nil {
		return nil, err
	}
	if !gallery.IsVisibleTo(viewerID) {
		return nil, common.ErrForbidden
	}
	return gallery, nil
}

func (s *commentService) CreateComment(ctx context.Context, galleryID, authorID uint64, text string, parentID *uint64) (*dbmysql.Comment, error) {
	text, err := common.NormalizeCommentText(text)
	if err != nil {
		return nil, err
	}

	gallery, err := s.visibleGallery(ctx, authorID, galleryID)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.commentRepo.GetCommentByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.GalleryID != galleryID {
			return nil, common.ErrNotFound
		}
		if parent.ParentID != nil {
			return nil, common.ErrInvalidParent
		}
	}

	author, err := s.userRepo.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	comment := &dbmysql.Comment{
		GalleryID: galleryID,
		UserID:    authorID,
		Username:  author.Username,
		Text:      text,
		ParentID:  parentID,
	}
	if err := s.commentRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.publisher.Publish(activity.NewEvent(activity.CommentCreated, authorID).
		WithGallery(galleryID).
		WithComment(comment.ID).
		WithTargetUser(gallery.UserID))
	return comment, nil
}

// GetComments returns root comments newest-first, each with its replies oldest-first.
func (s *commentService) GetComments(ctx context.Context, viewerID, galleryID uint64) ([]Thread, error) {
	if _, err := s.visibleGallery(ctx, viewerID, galleryID); err != nil {
		return nil, err
	}

	all, err := s.commentRepo.ListGalleryComments(ctx, galleryID)
	if err != nil {
		return nil, err
	}
	return BuildThreads(all), nil
}

func (s *commentService) CountComments(ctx context.Context, galleryID uint64) (int64, error) {
	return s.commentRepo.CountGalleryComments(ctx, galleryID)
}

// BuildThreads expects comments in creation order. Replies whose parent is
// missing are dropped.
func BuildThreads(comments []dbmysql.Comment) []Thread {
	threads := make([]Thread, 0)
	index := make(map[uint64]int)
	for _, c := range comments {
		if c.ParentID == nil {
			index[c.ID] = len(threads)
			threads = append(threads, Thread{Comment: c, Replies: []Reply{}})
		}
	}
	for _, c := range comments {
		if c.ParentID == nil {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			threads[i].Replies = append(threads[i].Replies, c)
		}
	}

	sort.SliceStable(threads, func(i, j int) bool {
		a, b := threads[i].CreatedAt, threads[j].CreatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return threads[i].ID > threads[j].ID
	})
	for i := range threads {
		replies := threads[i].Replies
		sort.SliceStable(replies, func(a, b int) bool {
			return replies[a].CreatedAt.Before(replies[b].CreatedAt)
		})
	}
	return threads
}
