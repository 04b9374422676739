package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collabhub-dev/collab-backend/internal/auth"
)

// Handler bundles the dependencies for user HTTP endpoints.
type Handler struct{}

func New() *Handler {
	return &Handler{}
}

// Me returns the current resolved user, including the normalized role.
func (h *Handler) Me(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user, "display_name": user.DisplayName()})
}
