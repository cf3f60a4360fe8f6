package reviewapi

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tunebox/songreview/frontend/reviewcard"
	"github.com/tunebox/songreview/internal/auth"
	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/review-service/domain"
	"github.com/tunebox/songreview/services/review-service/handler"
	"github.com/tunebox/songreview/services/review-service/service"
)

// memReviews is an in-memory review store for running the real review service.
type memReviews struct {
	mu      sync.Mutex
	reviews map[string]*domain.Review
	writes  int
}

func (m *memReviews) Create(ctx context.Context, r *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.reviews[r.ID] = &cp
	return nil
}

func (m *memReviews) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReviews) FindBySongID(ctx context.Context, songID string) ([]*domain.Review, error) {
	return nil, nil
}

func (m *memReviews) FindByUserID(ctx context.Context, userID string) ([]*domain.Review, error) {
	return nil, nil
}

func (m *memReviews) UpdateFields(ctx context.Context, id string, fields map[string]interface{}, updatedAt time.Time) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	if v, ok := fields["rating"].(int); ok {
		r.Rating = v
	}
	if v, ok := fields["title"].(string); ok {
		r.Title = v
	}
	if v, ok := fields["comment"].(string); ok {
		r.Comment = v
	}
	r.UpdatedAt = updatedAt
	m.writes++
	cp := *r
	return &cp, nil
}

func (m *memReviews) ToggleLike(ctx context.Context, id, userID string) ([]string, error) {
	return nil, errors.New("not used")
}

func (m *memReviews) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *memReviews) RatingSummary(ctx context.Context, songID string) (float64, int64, error) {
	return 0, 0, nil
}

type fixedToken string

func (f fixedToken) Token() (string, error) { return string(f), nil }

var created = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func startReviewService(t *testing.T) (*memReviews, *Client, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.SetOutput("roundtrip-test", io.Discard)
	if err := handler.RegisterValidators(); err != nil {
		t.Fatalf("register validators: %v", err)
	}

	repo := &memReviews{reviews: map[string]*domain.Review{
		"r1": {
			ID:        "r1",
			Title:     "Great tune",
			Comment:   "Loved the chorus a lot.",
			Rating:    4,
			Song:      domain.SongSnapshot{ID: "s1", Name: "Song"},
			User:      domain.Author{ID: "u1", Username: "alice"},
			Likes:     []string{},
			CreatedAt: created,
			UpdatedAt: created,
		},
	}}

	a := auth.NewJWTAuthenticator("secret", time.Hour)
	token, _ := a.GenerateToken("u1", "alice", "user")

	r := gin.New()
	handler.NewReviewHandler(service.NewReviewService(repo, nil, nil, nil)).RegisterRoutes(r, auth.Middleware(a))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return repo, New(srv.URL, ""), token
}

func cardFor(repo *memReviews, client *Client, token string) *reviewcard.Card {
	stored, _ := repo.FindByID(context.Background(), "r1")
	return reviewcard.New(reviewcard.Config{
		Record: reviewcard.Record{
			ID:        stored.ID,
			Rating:    stored.Rating,
			Title:     stored.Title,
			Comment:   stored.Comment,
			Author:    reviewcard.Author{ID: stored.User.ID, Username: stored.User.Username},
			CreatedAt: stored.CreatedAt,
			UpdatedAt: stored.UpdatedAt,
		},
		ViewerID: "u1",
		Remote:   client,
		Tokens:   fixedToken(token),
	})
}

func TestCardMatchesServerAfterPaddedEdit(t *testing.T) {
	repo, client, token := startReviewService(t)
	card := cardFor(repo, client, token)

	card.EnterEdit()
	card.SetTitle("Great tune ")
	if err := card.Commit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), "r1")
	v := card.View()
	if v.Title != stored.Title {
		t.Fatalf("card title %q differs from server %q", v.Title, stored.Title)
	}
	if (v.EditedLabel != "") != stored.Edited() {
		t.Fatalf("card edited=%q but server edited=%v", v.EditedLabel, stored.Edited())
	}
	if repo.writes != 0 {
		t.Fatalf("expected no writes, got %d", repo.writes)
	}
}

func TestCardCommitsWhatServerStores(t *testing.T) {
	repo, client, token := startReviewService(t)
	card := cardFor(repo, client, token)

	card.EnterEdit()
	card.SetTitle("  Even better tune  ")
	card.SetComment("\tThe bridge is wonderful too. ")
	if err := card.Commit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), "r1")
	rec := card.Record()
	if rec.Title != stored.Title || rec.Comment != stored.Comment {
		t.Fatalf("card %q/%q differs from server %q/%q", rec.Title, rec.Comment, stored.Title, stored.Comment)
	}
	if card.View().EditedLabel == "" || !stored.Edited() {
		t.Fatal("both sides should report the review as edited")
	}
}

func TestShortTitleRejectedBeforeServer(t *testing.T) {
	repo, client, token := startReviewService(t)
	card := cardFor(repo, client, token)

	card.EnterEdit()
	card.SetTitle("Hell ")
	if card.View().CanSave() {
		t.Fatal("save must be disabled for a title the server would reject")
	}
	var fe reviewcard.FieldErrors
	if err := card.Commit(context.Background()); !errors.As(err, &fe) {
		t.Fatalf("expected client-side FieldErrors, got %v", err)
	}
	if repo.writes != 0 {
		t.Fatal("nothing should reach the store")
	}
}
