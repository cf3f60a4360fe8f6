package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tunebox/songreview/internal/auth"
	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/content-service/domain"
	"github.com/tunebox/songreview/services/content-service/dto"
	"github.com/tunebox/songreview/services/content-service/middleware"
	"github.com/tunebox/songreview/services/content-service/service"
)

var spotifyIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{22}$`)

type SongHandler struct {
	svc service.SongService
}

func NewSongHandler(svc service.SongService) *SongHandler { return &SongHandler{svc: svc} }

func (h *SongHandler) RegisterRoutes(r *gin.Engine, authenticator auth.Authenticator) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	g := r.Group("/content")

	g.GET("/songs", h.ListSongs)
	g.GET("/songs/search", h.SearchSongs)
	g.GET("/songs/:id", h.GetSong)

	admin := g.Group("", auth.Middleware(authenticator), auth.AdminOnly())
	admin.POST("/songs", h.CreateSong)
	admin.POST("/songs/import/:spotifyId", h.ImportSong)
}

func (h *SongHandler) CreateSong(c *gin.Context) {
	var req dto.CreateSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(logger.EventValidationFailure, "Invalid song payload", logger.Fields(
			"ip", c.ClientIP(),
			"error", err.Error(),
		))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genres := make([]string, 0, len(req.Genres))
	for _, g := range req.Genres {
		if s := middleware.SanitizeString(g); s != "" {
			genres = append(genres, s)
		}
	}
	song := &domain.Song{
		Name:      middleware.SanitizeString(req.Name),
		Artist:    middleware.SanitizeString(req.Artist),
		Album:     middleware.SanitizeString(req.Album),
		Genres:    genres,
		Thumbnail: req.Thumbnail,
	}

	if err := h.svc.CreateSong(c.Request.Context(), song); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, song)
}

func (h *SongHandler) GetSong(c *gin.Context) {
	song, err := h.svc.GetSong(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

func (h *SongHandler) ListSongs(c *gin.Context) {
	out, err := h.svc.ListSongs(c.Request.Context(), queryLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *SongHandler) SearchSongs(c *gin.Context) {
	out, err := h.svc.SearchSongs(c.Request.Context(), c.Query("q"), queryLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *SongHandler) ImportSong(c *gin.Context) {
	spotifyID := c.Param("spotifyId")
	if !spotifyIDPattern.MatchString(spotifyID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spotify track id"})
		return
	}

	song, err := h.svc.ImportFromSpotify(c.Request.Context(), spotifyID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		return 0
	}
	return limit
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSongNotFound), errors.Is(err, domain.ErrTrackNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSongExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidSongData):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrImportDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		logger.Error(logger.EventGeneral, "Unhandled content error", logger.Fields(
			"path", c.FullPath(),
			"error", err.Error(),
		))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
