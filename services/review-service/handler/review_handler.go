package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tunebox/songreview/internal/auth"
	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/review-service/domain"
	"github.com/tunebox/songreview/services/review-service/dto"
	"github.com/tunebox/songreview/services/review-service/service"
)

type ReviewHandler struct {
	service service.ReviewService
}

func NewReviewHandler(service service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service: service,
	}
}

// POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID := c.GetString(auth.ContextUserID)

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(logger.EventValidationFailure, "Invalid create review request", logger.Fields(
			"user_id", userID,
			"error", err.Error(),
		))
		badRequest(c, err)
		return
	}

	review, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toReviewResponse(review))
}

// GET /api/v1/reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponse(review))
}

// PATCH /api/v1/reviews/:id
func (h *ReviewHandler) EditReview(c *gin.Context) {
	userID := c.GetString(auth.ContextUserID)
	reviewID := c.Param("id")

	var req dto.EditReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(logger.EventValidationFailure, "Invalid edit review request", logger.Fields(
			"user_id", userID,
			"review_id", reviewID,
			"error", err.Error(),
		))
		badRequest(c, err)
		return
	}

	review, err := h.service.Edit(c.Request.Context(), userID, reviewID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReviewResponse(review))
}

// POST /api/v1/reviews/:id/like
func (h *ReviewHandler) ToggleLike(c *gin.Context) {
	reviewID := c.Param("id")

	likes, err := h.service.ToggleLike(c.Request.Context(), c.GetString(auth.ContextUserID), reviewID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToggleLikeResponse{ReviewID: reviewID, Likes: likes})
}

// DELETE /api/v1/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.GetString(auth.ContextUserID), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted successfully"})
}

// GET /api/v1/songs/:songId/reviews
func (h *ReviewHandler) ListSongReviews(c *gin.Context) {
	reviews, err := h.service.ListBySong(c.Request.Context(), c.Param("songId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponses(reviews))
}

// GET /api/v1/users/:userId/reviews
func (h *ReviewHandler) ListUserReviews(c *gin.Context) {
	reviews, err := h.service.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponses(reviews))
}

// GET /api/v1/songs/:songId/rating
func (h *ReviewHandler) GetSongRating(c *gin.Context) {
	songID := c.Param("songId")

	avg, count, err := h.service.SongRating(c.Request.Context(), songID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SongRatingResponse{
		SongID:  songID,
		Average: avg,
		Count:   count,
	})
}

func badRequest(c *gin.Context, err error) {
	if fields := fieldErrors(err); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidComment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotReviewOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrReviewNotFound),
		errors.Is(err, domain.ErrSongNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrReviewExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUpstreamFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrUpstreamFailure.Error()})
	default:
		logger.Error(logger.EventGeneral, "Unhandled review error", logger.Fields(
			"path", c.FullPath(),
			"error", err.Error(),
		))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func toReviewResponse(r *domain.Review) dto.ReviewResponse {
	likes := r.Likes
	if likes == nil {
		likes = []string{}
	}
	return dto.ReviewResponse{
		ID:        r.ID,
		Title:     r.Title,
		Comment:   r.Comment,
		Rating:    r.Rating,
		Song:      r.Song,
		User:      r.User,
		Likes:     likes,
		Edited:    r.Edited(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toReviewResponses(reviews []*domain.Review) []dto.ReviewResponse {
	response := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		response = append(response, toReviewResponse(r))
	}
	return response
}

func (h *ReviewHandler) RegisterRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api/v1")
	{
		api.GET("/reviews/:id", h.GetReview)
		api.GET("/songs/:songId/reviews", h.ListSongReviews)
		api.GET("/songs/:songId/rating", h.GetSongRating)
		api.GET("/users/:userId/reviews", h.ListUserReviews)

		reviews := api.Group("/reviews")
		reviews.Use(authMiddleware)
		{
			reviews.POST("", h.CreateReview)
			reviews.PATCH("/:id", h.EditReview)
			reviews.DELETE("/:id", h.DeleteReview)
			reviews.POST("/:id/like", h.ToggleLike)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
