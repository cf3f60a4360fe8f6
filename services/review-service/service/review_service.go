package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/review-service/domain"
	"github.com/tunebox/songreview/services/review-service/dto"
	"github.com/tunebox/songreview/services/review-service/repository"
	"golang.org/x/sync/errgroup"
)

type ReviewService interface {
	Create(ctx context.Context, userID string, req dto.CreateReviewRequest) (*domain.Review, error)
	Get(ctx context.Context, id string) (*domain.Review, error)
	ListBySong(ctx context.Context, songID string) ([]*domain.Review, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Review, error)
	Edit(ctx context.Context, userID, id string, req dto.EditReviewRequest) (*domain.Review, error)
	ToggleLike(ctx context.Context, userID, id string) ([]string, error)
	Delete(ctx context.Context, userID, id string) error
	SongRating(ctx context.Context, songID string) (float64, int64, error)
}

type reviewService struct {
	repo     repository.ReviewRepository
	songs    SongCatalog
	users    UserDirectory
	notifier Notifier
	now      func() time.Time
}

func NewReviewService(repo repository.ReviewRepository, songs SongCatalog, users UserDirectory, notifier Notifier) ReviewService {
	return &reviewService{
		repo:     repo,
		songs:    songs,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *reviewService) Create(ctx context.Context, userID string, req dto.CreateReviewRequest) (*domain.Review, error) {
	if err := domain.ValidateRating(req.Rating); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if err := domain.ValidateTitle(title); err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(req.Comment)
	if err := domain.ValidateComment(comment); err != nil {
		return nil, err
	}

	var (
		song   *domain.SongSnapshot
		author *domain.Author
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		song, err = s.songs.GetSong(gctx, req.SongID)
		return err
	})
	g.Go(func() error {
		var err error
		author, err = s.users.GetUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	review := &domain.Review{
		ID:        uuid.New().String(),
		Title:     title,
		Comment:   comment,
		Rating:    req.Rating,
		Song:      *song,
		User:      domain.Author{ID: userID, Username: author.Username},
		Likes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	logger.Info(logger.EventReviewCreated, "Review created", logger.Fields(
		"review_id", review.ID,
		"user_id", userID,
		"song_id", song.ID,
	))
	return review, nil
}

func (s *reviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *reviewService) ListBySong(ctx context.Context, songID string) ([]*domain.Review, error) {
	return s.repo.FindBySongID(ctx, songID)
}

func (s *reviewService) ListByUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// Edit applies only the fields that differ from the stored review. A request
// that changes nothing performs no write and leaves updated_at untouched.
func (s *reviewService) Edit(ctx context.Context, userID, id string, req dto.EditReviewRequest) (*domain.Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.User.ID != userID {
		logger.Security(logger.EventAccessDenied, "Edit attempt by non-author", logger.Fields(
			"review_id", id,
			"user_id", userID,
		))
		return nil, domain.ErrNotReviewOwner
	}

	fields := map[string]interface{}{}
	if req.Rating != nil && *req.Rating != review.Rating {
		if err := domain.ValidateRating(*req.Rating); err != nil {
			return nil, err
		}
		fields["rating"] = *req.Rating
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := domain.ValidateTitle(title); err != nil {
			return nil, err
		}
		if title != review.Title {
			fields["title"] = title
		}
	}
	if req.Comment != nil {
		comment := strings.TrimSpace(*req.Comment)
		if err := domain.ValidateComment(comment); err != nil {
			return nil, err
		}
		if comment != review.Comment {
			fields["comment"] = comment
		}
	}

	if len(fields) == 0 {
		return review, nil
	}

	updated, err := s.repo.UpdateFields(ctx, id, fields, s.now().UTC())
	if err != nil {
		return nil, err
	}

	logger.Info(logger.EventReviewEdited, "Review edited", logger.Fields(
		"review_id", id,
		"user_id", userID,
		"fields", len(fields),
	))
	return updated, nil
}

func (s *reviewService) ToggleLike(ctx context.Context, userID, id string) ([]string, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	likes, err := s.repo.ToggleLike(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	liked := false
	for _, l := range likes {
		if l == userID {
			liked = true
			break
		}
	}

	logger.Info(logger.EventReviewLiked, "Review like toggled", logger.Fields(
		"review_id", id,
		"user_id", userID,
		"liked", liked,
	))

	if liked && review.User.ID != userID {
		s.notifyLike(ctx, userID, review)
	}
	return likes, nil
}

// notifyLike never fails the like itself; the notification is best effort.
func (s *reviewService) notifyLike(ctx context.Context, actorID string, review *domain.Review) {
	if s.notifier == nil {
		return
	}
	n := LikeNotification{
		RecipientID: review.User.ID,
		ActorID:     actorID,
		ReviewID:    review.ID,
		SongID:      review.Song.ID,
		Message:     fmt.Sprintf("Someone liked your review of %s", review.Song.Name),
	}
	if err := s.notifier.NotifyLike(ctx, n); err != nil {
		logger.Warn(logger.EventUpstreamError, "Failed to send like notification", logger.Fields(
			"review_id", review.ID,
			"error", err.Error(),
		))
		return
	}
	logger.Info(logger.EventNotificationSent, "Like notification sent", logger.Fields(
		"review_id", review.ID,
		"recipient_id", review.User.ID,
	))
}

func (s *reviewService) Delete(ctx context.Context, userID, id string) error {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if review.User.ID != userID {
		logger.Security(logger.EventAccessDenied, "Delete attempt by non-author", logger.Fields(
			"review_id", id,
			"user_id", userID,
		))
		return domain.ErrNotReviewOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info(logger.EventReviewDeleted, "Review deleted", logger.Fields(
		"review_id", id,
		"user_id", userID,
	))
	return nil
}

func (s *reviewService) SongRating(ctx context.Context, songID string) (float64, int64, error) {
	return s.repo.RatingSummary(ctx, songID)
}
