package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tunebox/songreview/internal/auth"
	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/notifications-service/domain"
	"github.com/tunebox/songreview/services/notifications-service/middleware"
	"github.com/tunebox/songreview/services/notifications-service/service"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		service: service,
	}
}

type createNotificationRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	ActorID     string `json:"actor_id" binding:"required"`
	ReviewID    string `json:"review_id" binding:"required"`
	SongID      string `json:"song_id"`
	Message     string `json:"message" binding:"max=300"`
}

// CreateNotification is called by the review service when a review is liked.
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(logger.EventValidationFailure, "Invalid notification payload", logger.Fields(
			"ip", c.ClientIP(),
			"error", err.Error(),
		))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n := &domain.Notification{
		UserID:   middleware.SanitizeString(req.RecipientID),
		Type:     domain.NotificationTypeReviewLiked,
		Message:  middleware.SanitizeString(req.Message),
		ActorID:  middleware.SanitizeString(req.ActorID),
		ReviewID: middleware.SanitizeString(req.ReviewID),
		SongID:   middleware.SanitizeString(req.SongID),
	}

	if err := h.service.CreateNotification(c.Request.Context(), n); err != nil {
		if errors.Is(err, domain.ErrInvalidNotification) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store notification"})
		return
	}

	c.JSON(http.StatusCreated, n)
}

func (h *NotificationHandler) GetUserNotifications(c *gin.Context) {
	userID := c.GetString(auth.ContextUserID)

	notifications, err := h.service.GetUserNotifications(c.Request.Context(), userID)
	if err != nil {
		logger.Error(logger.EventGeneral, "Failed to fetch user notifications", logger.Fields(
			"user_id", userID,
			"error", err.Error(),
		))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  notifications,
		"count": len(notifications),
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	err := h.service.MarkRead(c.Request.Context(), c.GetString(auth.ContextUserID), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

func (h *NotificationHandler) RegisterRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc, internalKey string) {
	router.Use(middleware.QueryGuard())

	router.POST("/internal/notifications", middleware.InternalOnly(internalKey), h.CreateNotification)

	api := router.Group("/api/v1")
	{
		notifications := api.Group("/notifications", authMiddleware)
		{
			notifications.GET("/me", h.GetUserNotifications)
			notifications.PUT("/:id/read", h.MarkRead)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
