package dto

import (
	"time"

	"github.com/tunebox/songreview/services/review-service/domain"
)

type CreateReviewRequest struct {
	SongID  string `json:"song_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"required,notblank,min=5,max=50"`
	Comment string `json:"comment" binding:"required,notblank,min=10,max=500"`
}

// EditReviewRequest carries only the fields the caller wants changed; nil means unchanged.
type EditReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Title   *string `json:"title,omitempty" binding:"omitempty,notblank,min=5,max=50"`
	Comment *string `json:"comment,omitempty" binding:"omitempty,notblank,min=10,max=500"`
}

func (r *EditReviewRequest) Empty() bool {
	return r.Rating == nil && r.Title == nil && r.Comment == nil
}

type ReviewResponse struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Comment   string              `json:"comment"`
	Rating    int                 `json:"rating"`
	Song      domain.SongSnapshot `json:"song"`
	User      domain.Author       `json:"user"`
	Likes     []string            `json:"likes"`
	Edited    bool                `json:"edited"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type ToggleLikeResponse struct {
	ReviewID string   `json:"review_id"`
	Likes    []string `json:"likes"`
}

type SongRatingResponse struct {
	SongID  string  `json:"song_id"`
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}
