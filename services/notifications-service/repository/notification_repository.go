package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/notifications-service/domain"
)

const createTableCQL = `CREATE TABLE IF NOT EXISTS notifications (
	user_id text,
	id timeuuid,
	type text,
	title text,
	message text,
	actor_id text,
	review_id text,
	song_id text,
	created_at timestamp,
	read boolean,
	PRIMARY KEY ((user_id), id)
) WITH CLUSTERING ORDER BY (id DESC)`

type NotificationRepository interface {
	GetUserNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	CreateNotification(ctx context.Context, notification *domain.Notification) error
	MarkRead(ctx context.Context, userID string, id gocql.UUID) error
}

type notificationRepository struct {
	session *gocql.Session
}

func NewNotificationRepository(session *gocql.Session) NotificationRepository {
	return &notificationRepository{
		session: session,
	}
}

// EnsureSchema creates the notifications table in the session's keyspace.
func EnsureSchema(ctx context.Context, session *gocql.Session) error {
	return session.Query(createTableCQL).WithContext(ctx).Exec()
}

func (r *notificationRepository) GetUserNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	query := `SELECT id, user_id, type, title, message, actor_id, review_id, song_id, created_at, read
	          FROM notifications
	          WHERE user_id = ?
	          LIMIT ?`

	iter := r.session.Query(query, userID, limit).WithContext(ctx).Iter()

	notifications := []domain.Notification{}
	var n domain.Notification
	for iter.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
		&n.ActorID, &n.ReviewID, &n.SongID, &n.CreatedAt, &n.Read) {
		notifications = append(notifications, n)
		n = domain.Notification{}
	}

	if err := iter.Close(); err != nil {
		logger.Error(logger.EventDBError, "Error fetching notifications", logger.Fields(
			"user_id", userID,
			"error", err.Error(),
		))
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, nil
}

func (r *notificationRepository) CreateNotification(ctx context.Context, notification *domain.Notification) error {
	if notification.ID == (gocql.UUID{}) {
		notification.ID = gocql.TimeUUID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO notifications (user_id, id, type, title, message, actor_id, review_id, song_id, created_at, read)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err := r.session.Query(query,
		notification.UserID,
		notification.ID,
		string(notification.Type),
		notification.Title,
		notification.Message,
		notification.ActorID,
		notification.ReviewID,
		notification.SongID,
		notification.CreatedAt,
		notification.Read,
	).WithContext(ctx).Exec()

	if err != nil {
		logger.Error(logger.EventDBError, "Error creating notification", logger.Fields(
			"user_id", notification.UserID,
			"error", err.Error(),
		))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID string, id gocql.UUID) error {
	applied, err := r.session.Query(
		`UPDATE notifications SET read = true WHERE user_id = ? AND id = ? IF EXISTS`,
		userID, id,
	).WithContext(ctx).ScanCAS()
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !applied {
		return domain.ErrNotificationNotFound
	}
	return nil
}
