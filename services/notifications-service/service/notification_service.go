package service

import (
	"context"
	"strings"

	"github.com/gocql/gocql"
	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/notifications-service/domain"
	"github.com/tunebox/songreview/services/notifications-service/repository"
)

const maxListed = 100

type NotificationService interface {
	GetUserNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	CreateNotification(ctx context.Context, notification *domain.Notification) error
	MarkRead(ctx context.Context, userID, id string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{
		repo: repo,
	}
}

func (s *notificationService) GetUserNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID, maxListed)
}

func (s *notificationService) CreateNotification(ctx context.Context, n *domain.Notification) error {
	if strings.TrimSpace(n.UserID) == "" || n.Type != domain.NotificationTypeReviewLiked {
		return domain.ErrInvalidNotification
	}
	if n.ActorID == n.UserID {
		return domain.ErrInvalidNotification
	}
	if n.Title == "" {
		n.Title = "New like"
	}
	n.Read = false

	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return err
	}

	logger.Info(logger.EventNotificationSent, "Notification stored", logger.Fields(
		"user_id", n.UserID,
		"type", string(n.Type),
		"review_id", n.ReviewID,
	))
	return nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	uuid, err := gocql.ParseUUID(id)
	if err != nil {
		return domain.ErrNotificationNotFound
	}
	return s.repo.MarkRead(ctx, userID, uuid)
}
