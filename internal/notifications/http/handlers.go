package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/collabhub-dev/collab-backend/internal/auth"
	"github.com/collabhub-dev/collab-backend/internal/notifications/domain"
	"github.com/collabhub-dev/collab-backend/internal/notifications/repository"
)

type Handler struct {
	repo  *repository.NotificationRepository
	redis *redis.Client
}

func New(repo *repository.NotificationRepository, rdb *redis.Client) *Handler {
	return &Handler{repo: repo, redis: rdb}
}

// respondError maps the notification error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "notification not found"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "store unavailable, retry later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

func (h *Handler) list(c *gin.Context) {
	user := auth.CurrentUser(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.repo.ListByUser(c.Request.Context(), user.ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "notifications": items})
}

func (h *Handler) unreadCount(c *gin.Context) {
	user := auth.CurrentUser(c)

	count, err := h.repo.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "unread": count})
}

func (h *Handler) markRead(c *gin.Context) {
	user := auth.CurrentUser(c)

	if err := h.repo.MarkRead(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) markAllRead(c *gin.Context) {
	user := auth.CurrentUser(c)

	if err := h.repo.MarkAllRead(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
