package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/review-service/domain"
)

// SongCatalog resolves a song id into the snapshot stored on a review.
type SongCatalog interface {
	GetSong(ctx context.Context, songID string) (*domain.SongSnapshot, error)
}

type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*domain.Author, error)
}

// LikeNotification is what the author of a review receives when someone likes it.
type LikeNotification struct {
	RecipientID string `json:"recipient_id"`
	ActorID     string `json:"actor_id"`
	ReviewID    string `json:"review_id"`
	SongID      string `json:"song_id"`
	Message     string `json:"message"`
}

type Notifier interface {
	NotifyLike(ctx context.Context, n LikeNotification) error
}

type contentClient struct {
	baseURL string
	client  *http.Client
}

func NewSongCatalog(baseURL string) SongCatalog {
	return &contentClient{baseURL: baseURL, client: &http.Client{Timeout: 5 * time.Second}}
}

func (c *contentClient) GetSong(ctx context.Context, songID string) (*domain.SongSnapshot, error) {
	url := fmt.Sprintf("%s/content/songs/%s", c.baseURL, songID)

	var song domain.SongSnapshot
	if err := getJSON(ctx, c.client, url, &song); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, domain.ErrSongNotFound
		}
		logger.Error(logger.EventUpstreamError, "Content service request failed", logger.Fields(
			"song_id", songID,
			"error", err.Error(),
		))
		return nil, fmt.Errorf("%w: content service: %v", domain.ErrUpstreamFailure, err)
	}
	return &song, nil
}

type userClient struct {
	baseURL string
	client  *http.Client
}

func NewUserDirectory(baseURL string) UserDirectory {
	return &userClient{baseURL: baseURL, client: &http.Client{Timeout: 5 * time.Second}}
}

func (c *userClient) GetUser(ctx context.Context, userID string) (*domain.Author, error) {
	url := fmt.Sprintf("%s/users/%s", c.baseURL, userID)

	var author domain.Author
	if err := getJSON(ctx, c.client, url, &author); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, domain.ErrUserNotFound
		}
		logger.Error(logger.EventUpstreamError, "User service request failed", logger.Fields(
			"user_id", userID,
			"error", err.Error(),
		))
		return nil, fmt.Errorf("%w: user service: %v", domain.ErrUpstreamFailure, err)
	}
	return &author, nil
}

type notificationClient struct {
	baseURL     string
	internalKey string
	client      *http.Client
}

func NewNotifier(baseURL, internalKey string) Notifier {
	return &notificationClient{
		baseURL:     baseURL,
		internalKey: internalKey,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *notificationClient) NotifyLike(ctx context.Context, n LikeNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/notifications", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Key", c.internalKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notifications service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notifications service returned %d", resp.StatusCode)
	}
	return nil
}

var errNotFound = errors.New("not found")

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
