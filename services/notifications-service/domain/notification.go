package domain

import (
	"errors"
	"time"

	"github.com/gocql/gocql"
)

type NotificationType string

const (
	NotificationTypeReviewLiked NotificationType = "REVIEW_LIKED"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidNotification  = errors.New("invalid notification")
)

type Notification struct {
	ID        gocql.UUID       `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	ActorID   string           `json:"actor_id,omitempty"`
	ReviewID  string           `json:"review_id,omitempty"`
	SongID    string           `json:"song_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Read      bool             `json:"read"`
}
