package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labebook/backend/internal/services"
)

const ContextSession = "team_session"

// TeamSession builds the per-request session handle (user + active team)
// from the authenticated user's stored selection. Must run after
// AuthRequired.
func TeamSession(store *services.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		sess, err := store.Load(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
			c.Abort()
			return
		}

		c.Set(ContextSession, sess)
		c.Next()
	}
}

// GetSession returns the request's session handle. It panics when called
// outside the TeamSession middleware; that is a programming error, not a
// runtime condition.
func GetSession(c *gin.Context) *services.Session {
	v, exists := c.Get(ContextSession)
	if !exists {
		panic("middleware: GetSession called without TeamSession middleware")
	}
	return v.(*services.Session)
}
