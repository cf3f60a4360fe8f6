// Package reviewapi talks to the review and user services on behalf of the
// terminal front end.
package reviewapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tunebox/songreview/frontend/reviewcard"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

type Client struct {
	reviewURL string
	userURL   string
	http      *http.Client
}

func New(reviewURL, userURL string) *Client {
	return &Client{
		reviewURL: strings.TrimRight(reviewURL, "/"),
		userURL:   strings.TrimRight(userURL, "/"),
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

type Song struct {
	ID        string   `json:"id"`
	Name      string   `json:"song_name"`
	Artist    string   `json:"artist"`
	Album     string   `json:"album"`
	Genres    []string `json:"genres"`
	Thumbnail string   `json:"thumbnail"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Review struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	Song      Song      `json:"song"`
	User      User      `json:"user"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r Review) Record() reviewcard.Record {
	return reviewcard.Record{
		ID:      r.ID,
		Rating:  r.Rating,
		Title:   r.Title,
		Comment: r.Comment,
		Likes:   append([]string(nil), r.Likes...),
		Song: reviewcard.Song{
			ID:        r.Song.ID,
			Name:      r.Song.Name,
			Artist:    r.Song.Artist,
			Album:     r.Song.Album,
			Genres:    append([]string(nil), r.Song.Genres...),
			Thumbnail: r.Song.Thumbnail,
		},
		Author:    reviewcard.Author{ID: r.User.ID, Username: r.User.Username},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type Session struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

type editRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Title   *string `json:"title,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

type likeResponse struct {
	ReviewID string   `json:"review_id"`
	Likes    []string `json:"likes"`
}

// ToggleLike returns the likes of the review after the server applied the toggle.
func (c *Client) ToggleLike(ctx context.Context, reviewID, authToken string) ([]string, error) {
	var out likeResponse
	path := fmt.Sprintf("%s/api/v1/reviews/%s/like", c.reviewURL, url.PathEscape(reviewID))
	if err := c.do(ctx, http.MethodPost, path, authToken, nil, &out); err != nil {
		return nil, err
	}
	if out.Likes == nil {
		out.Likes = []string{}
	}
	return out.Likes, nil
}

// EditReview sends only the non-nil fields of changes.
func (c *Client) EditReview(ctx context.Context, authToken, reviewID string, changes reviewcard.Changes) error {
	body := editRequest{Rating: changes.Rating, Title: changes.Title, Comment: changes.Comment}
	path := fmt.Sprintf("%s/api/v1/reviews/%s", c.reviewURL, url.PathEscape(reviewID))
	return c.do(ctx, http.MethodPatch, path, authToken, body, nil)
}

func (c *Client) DeleteReview(ctx context.Context, authToken, reviewID string) error {
	path := fmt.Sprintf("%s/api/v1/reviews/%s", c.reviewURL, url.PathEscape(reviewID))
	return c.do(ctx, http.MethodDelete, path, authToken, nil, nil)
}

func (c *Client) ListUserReviews(ctx context.Context, userID string) ([]Review, error) {
	var out []Review
	path := fmt.Sprintf("%s/api/v1/users/%s/reviews", c.reviewURL, url.PathEscape(userID))
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, identifier, password string) (*Session, error) {
	var out Session
	body := map[string]string{"identifier": identifier, "password": password}
	if err := c.do(ctx, http.MethodPost, c.userURL+"/api/v1/users/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, target, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
			apiErr.Fields = payload.Fields
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
