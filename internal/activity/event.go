package activity

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	UserRegistered EventType = "user.registered"
	UserFollowed   EventType = "user.followed"
	UserUnfollowed EventType = "user.unfollowed"
	GalleryCreated EventType = "gallery.created"
	GalleryDeleted EventType = "gallery.deleted"
	GalleryLiked   EventType = "gallery.liked"
	GalleryUnliked EventType = "gallery.unliked"
	GallerySaved   EventType = "gallery.saved"
	GalleryUnsaved EventType = "gallery.unsaved"
	CommentCreated EventType = "comment.created"
)

// Event is a record of something a user did. Zero ids mean "not applicable".
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	ActorID      uint64    `json:"actorId"`
	TargetUserID uint64    `json:"targetUserId,omitempty"`
	GalleryID    uint64    `json:"galleryId,omitempty"`
	CommentID    uint64    `json:"commentId,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

func NewEvent(t EventType, actorID uint64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) WithTargetUser(id uint64) Event { e.TargetUserID = id; return e }
func (e Event) WithGallery(id uint64) Event    { e.GalleryID = id; return e }
func (e Event) WithComment(id uint64) Event    { e.CommentID = id; return e }
