package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/collabhub-dev/collab-backend/internal/auth/domain"
)

const CtxUser = "current_user"

// CurrentUser returns the resolved user set by the auth middleware, or
// nil when the request is unauthenticated.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
