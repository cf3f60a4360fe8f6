package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tunebox/songreview/internal/auth"
	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/user-service/domain"
	"github.com/tunebox/songreview/services/user-service/dto"
	"github.com/tunebox/songreview/services/user-service/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(logger.EventValidationFailure, "Invalid registration request", logger.Fields(
			"ip", c.ClientIP(),
			"error", err.Error(),
		))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		logger.Warn(logger.EventGeneral, "Registration failed", logger.Fields(
			"ip", c.ClientIP(),
			"error", err.Error(),
		))
		switch {
		case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info(logger.EventGeneral, "New user registered", logger.Fields(
		"user_id", user.ID,
		"ip", c.ClientIP(),
	))
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(logger.EventValidationFailure, "Invalid login request body", logger.Fields(
			"ip", c.ClientIP(),
			"error", err.Error(),
		))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		logger.Security(logger.EventLoginFailure, "Login failed", logger.Fields(
			"identifier", req.Identifier,
			"ip", c.ClientIP(),
			"reason", err.Error(),
		))
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	logger.Security(logger.EventLoginSuccess, "Login completed", logger.Fields(
		"user_id", resp.User.ID,
		"ip", c.ClientIP(),
	))
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Me(c *gin.Context) {
	userResp, err := h.userService.GetByID(c.Request.Context(), c.GetString(auth.ContextUserID))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, userResp)
}

// GetPublicUser serves GET /users/:id for other services and GET /api/v1/users/:id for clients.
func (h *UserHandler) GetPublicUser(c *gin.Context) {
	user, err := h.userService.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) RegisterRoutes(router *gin.Engine, authMiddleware, authRateLimit gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/users/:id", h.GetPublicUser)

	api := router.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("/register", authRateLimit, h.Register)
			users.POST("/login", authRateLimit, h.Login)
			users.GET("/me", authMiddleware, h.Me)
			users.GET("/:id", h.GetPublicUser)
		}
	}
}
