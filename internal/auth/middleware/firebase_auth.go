package middleware

import (
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/collabhub-dev/collab-backend/internal/auth"
	"github.com/collabhub-dev/collab-backend/internal/auth/repository"
)

// FirebaseAuthMiddleware validates Firebase ID tokens and resolves the
// caller to a users row. The row's role is authoritative; token claims
// are only trusted for identity (uid, email).
func FirebaseAuthMiddleware(authClient *fbauth.Client, userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		decoded, err := authClient.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		email, _ := decoded.Claims["email"].(string)
		user, err := userRepo.EnsureUser(c.Request.Context(), decoded.UID, email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user: " + err.Error()})
			c.Abort()
			return
		}

		c.Set(auth.CtxUser, user)
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
