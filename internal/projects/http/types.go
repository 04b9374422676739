package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collabhub-dev/collab-backend/internal/projects/domain"
	"github.com/collabhub-dev/collab-backend/internal/projects/service"
)

// Handler bundles the dependencies for project HTTP endpoints.
type Handler struct {
	svc *service.ProjectService
}

func New(svc *service.ProjectService) *Handler {
	return &Handler{svc: svc}
}

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "unauthorized"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": verr.Msg, "field": verr.Field})
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "store unavailable, retry later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

// projectResponse attaches the optional partial-upload warning.
func projectResponse(p *domain.Project, warn *domain.PartialUploadFailure) gin.H {
	resp := gin.H{"ok": true, "project": p}
	if warn != nil {
		resp["warning"] = gin.H{"failed_files": warn.FailedNames}
	}
	return resp
}
