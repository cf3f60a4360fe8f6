package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/review-service/domain"
	"github.com/tunebox/songreview/services/review-service/dto"
)

type mockRepo struct {
	mu        sync.Mutex
	reviews   map[string]*domain.Review
	updates   int
	CreateErr error
}

func newMockRepo(reviews ...*domain.Review) *mockRepo {
	m := &mockRepo{reviews: map[string]*domain.Review{}}
	for _, r := range reviews {
		m.reviews[r.ID] = r
	}
	return m
}

func (m *mockRepo) Create(ctx context.Context, review *domain.Review) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.User.ID == review.User.ID && r.Song.ID == review.Song.ID {
			return domain.ErrReviewExists
		}
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) FindBySongID(ctx context.Context, songID string) ([]*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Review{}
	for _, r := range m.reviews {
		if r.Song.ID == songID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRepo) FindByUserID(ctx context.Context, userID string) ([]*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Review{}
	for _, r := range m.reviews {
		if r.User.ID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}, updatedAt time.Time) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	m.updates++
	for k, v := range fields {
		switch k {
		case "rating":
			r.Rating = v.(int)
		case "title":
			r.Title = v.(string)
		case "comment":
			r.Comment = v.(string)
		}
	}
	r.UpdatedAt = updatedAt
	cp := *r
	return &cp, nil
}

func (m *mockRepo) ToggleLike(ctx context.Context, id string, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	likes := []string{}
	found := false
	for _, l := range r.Likes {
		if l == userID {
			found = true
			continue
		}
		likes = append(likes, l)
	}
	if !found {
		likes = append(likes, userID)
	}
	r.Likes = likes
	return append([]string(nil), likes...), nil
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return domain.ErrReviewNotFound
	}
	delete(m.reviews, id)
	return nil
}

func (m *mockRepo) RatingSummary(ctx context.Context, songID string) (float64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum, n int64
	for _, r := range m.reviews {
		if r.Song.ID == songID {
			sum += int64(r.Rating)
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

type mockSongs struct {
	song *domain.SongSnapshot
	err  error
}

func (m *mockSongs) GetSong(ctx context.Context, songID string) (*domain.SongSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.song, nil
}

type mockUsers struct {
	author *domain.Author
	err    error
}

func (m *mockUsers) GetUser(ctx context.Context, userID string) (*domain.Author, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.author, nil
}

type mockNotifier struct {
	sent []LikeNotification
	err  error
}

func (m *mockNotifier) NotifyLike(ctx context.Context, n LikeNotification) error {
	m.sent = append(m.sent, n)
	return m.err
}

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleReview() *domain.Review {
	return &domain.Review{
		ID:        "r1",
		Title:     "Great tune",
		Comment:   "Catchy chorus and a great bridge.",
		Rating:    4,
		Song:      domain.SongSnapshot{ID: "s1", Name: "Song One"},
		User:      domain.Author{ID: "author", Username: "alice"},
		Likes:     []string{},
		CreatedAt: t0,
		UpdatedAt: t0,
	}
}

func newTestService(repo *mockRepo, n *mockNotifier) *reviewService {
	logger.SetOutput("review-test", io.Discard)
	svc := NewReviewService(
		repo,
		&mockSongs{song: &domain.SongSnapshot{ID: "s1", Name: "Song One", Artist: "Band"}},
		&mockUsers{author: &domain.Author{ID: "author", Username: "alice"}},
		n,
	).(*reviewService)
	svc.now = func() time.Time { return t0.Add(time.Hour) }
	return svc
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateReviewSnapshotsSongAndAuthor(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockNotifier{})

	review, err := svc.Create(context.Background(), "author", dto.CreateReviewRequest{
		SongID:  "s1",
		Rating:  5,
		Title:   "  Loved it  ",
		Comment: "Would listen again any day.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if review.Song.Artist != "Band" || review.User.Username != "alice" {
		t.Fatalf("snapshot not copied: %+v", review)
	}
	if review.Title != "Loved it" {
		t.Fatalf("expected trimmed title, got %q", review.Title)
	}
	if review.Edited() {
		t.Fatal("new review must not be edited")
	}

	_, err = svc.Create(context.Background(), "author", dto.CreateReviewRequest{
		SongID: "s1", Rating: 3, Title: "Second go", Comment: "Trying to review twice.",
	})
	if !errors.Is(err, domain.ErrReviewExists) {
		t.Fatalf("expected ErrReviewExists, got %v", err)
	}
}

func TestCreateReviewUnknownSong(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockNotifier{})
	svc.songs = &mockSongs{err: domain.ErrSongNotFound}

	_, err := svc.Create(context.Background(), "author", dto.CreateReviewRequest{
		SongID: "missing", Rating: 3, Title: "Whatever", Comment: "Some comment text.",
	})
	if !errors.Is(err, domain.ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}
}

func TestEditOnlyChangedFields(t *testing.T) {
	repo := newMockRepo(sampleReview())
	svc := newTestService(repo, &mockNotifier{})

	updated, err := svc.Edit(context.Background(), "author", "r1", dto.EditReviewRequest{
		Rating: intPtr(2),
		Title:  strPtr("Great tune"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Rating != 2 || updated.Title != "Great tune" {
		t.Fatalf("unexpected review: %+v", updated)
	}
	if !updated.Edited() {
		t.Fatal("expected review to be marked edited")
	}
	if repo.updates != 1 {
		t.Fatalf("expected 1 write, got %d", repo.updates)
	}
}

func TestEditWithoutChangesDoesNotWrite(t *testing.T) {
	repo := newMockRepo(sampleReview())
	svc := newTestService(repo, &mockNotifier{})

	got, err := svc.Edit(context.Background(), "author", "r1", dto.EditReviewRequest{
		Rating:  intPtr(4),
		Comment: strPtr("Catchy chorus and a great bridge."),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.updates != 0 {
		t.Fatalf("expected no write, got %d", repo.updates)
	}
	if got.Edited() {
		t.Fatal("review must not be marked edited")
	}
}

func TestEditRejections(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		req    dto.EditReviewRequest
		want   error
	}{
		{"not owner", "intruder", dto.EditReviewRequest{Rating: intPtr(1)}, domain.ErrNotReviewOwner},
		{"rating too high", "author", dto.EditReviewRequest{Rating: intPtr(6)}, domain.ErrInvalidRating},
		{"short title", "author", dto.EditReviewRequest{Title: strPtr("abc")}, domain.ErrInvalidTitle},
		{"blank comment", "author", dto.EditReviewRequest{Comment: strPtr("             ")}, domain.ErrInvalidComment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo(sampleReview())
			svc := newTestService(repo, &mockNotifier{})

			_, err := svc.Edit(context.Background(), tt.userID, "r1", tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if repo.updates != 0 {
				t.Fatal("rejected edit must not write")
			}
		})
	}
}

func TestToggleLikeNotifiesAuthorOnlyOnLike(t *testing.T) {
	repo := newMockRepo(sampleReview())
	n := &mockNotifier{}
	svc := newTestService(repo, n)

	likes, err := svc.ToggleLike(context.Background(), "fan", "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(likes) != 1 || likes[0] != "fan" {
		t.Fatalf("unexpected likes: %v", likes)
	}
	if len(n.sent) != 1 || n.sent[0].RecipientID != "author" || n.sent[0].ActorID != "fan" {
		t.Fatalf("unexpected notifications: %+v", n.sent)
	}

	likes, _ = svc.ToggleLike(context.Background(), "fan", "r1")
	if len(likes) != 0 {
		t.Fatalf("expected like removed, got %v", likes)
	}
	if len(n.sent) != 1 {
		t.Fatal("unlike must not notify")
	}

	_, _ = svc.ToggleLike(context.Background(), "author", "r1")
	if len(n.sent) != 1 {
		t.Fatal("self like must not notify")
	}
}

func TestToggleLikeSurvivesNotifierFailure(t *testing.T) {
	repo := newMockRepo(sampleReview())
	svc := newTestService(repo, &mockNotifier{err: errors.New("down")})

	likes, err := svc.ToggleLike(context.Background(), "fan", "r1")
	if err != nil {
		t.Fatalf("like must succeed when notifier fails: %v", err)
	}
	if len(likes) != 1 {
		t.Fatalf("unexpected likes: %v", likes)
	}
}

func TestToggleLikeDoesNotMarkEdited(t *testing.T) {
	repo := newMockRepo(sampleReview())
	svc := newTestService(repo, &mockNotifier{})

	_, _ = svc.ToggleLike(context.Background(), "fan", "r1")
	r, _ := svc.Get(context.Background(), "r1")
	if r.Edited() {
		t.Fatal("liking must not bump updated_at")
	}
}

func TestDeleteRequiresAuthor(t *testing.T) {
	repo := newMockRepo(sampleReview())
	svc := newTestService(repo, &mockNotifier{})

	if err := svc.Delete(context.Background(), "fan", "r1"); !errors.Is(err, domain.ErrNotReviewOwner) {
		t.Fatalf("expected ErrNotReviewOwner, got %v", err)
	}
	if err := svc.Delete(context.Background(), "author", "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), "r1"); !errors.Is(err, domain.ErrReviewNotFound) {
		t.Fatalf("expected review gone, got %v", err)
	}
}

func TestSongRating(t *testing.T) {
	second := sampleReview()
	second.ID = "r2"
	second.User.ID = "other"
	second.Rating = 1
	svc := newTestService(newMockRepo(sampleReview(), second), &mockNotifier{})

	avg, count, err := svc.SongRating(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg != 2.5 || count != 2 {
		t.Fatalf("expected 2.5 over 2, got %v over %d", avg, count)
	}
}
