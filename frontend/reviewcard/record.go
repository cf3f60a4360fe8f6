package reviewcard

import (
	"context"
	"time"
)

type Song struct {
	ID        string
	Name      string
	Artist    string
	Album     string
	Genres    []string
	Thumbnail string
}

type Author struct {
	ID       string
	Username string
}

// Record is the render-scoped copy of a review held by one card.
type Record struct {
	ID        string
	Rating    int
	Title     string
	Comment   string
	Likes     []string
	Song      Song
	Author    Author
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Record) Edited() bool {
	return r.UpdatedAt.After(r.CreatedAt)
}

func (r Record) LikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range r.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Changes lists the fields of an edit. A nil field is left unchanged by the server.
type Changes struct {
	Rating  *int
	Title   *string
	Comment *string
}

func (c Changes) Empty() bool {
	return c.Rating == nil && c.Title == nil && c.Comment == nil
}

// Remote performs the two server calls a card needs.
type Remote interface {
	ToggleLike(ctx context.Context, reviewID, authToken string) ([]string, error)
	EditReview(ctx context.Context, authToken, reviewID string, changes Changes) error
}

// TokenProvider returns the current credential. It is asked on every call, never cached.
type TokenProvider interface {
	Token() (string, error)
}

type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// DeleteFunc is supplied by the owner of the card list and removes the review.
type DeleteFunc func(reviewID string)
