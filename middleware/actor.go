package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"infraspend/models"
	"infraspend/service"

	"github.com/gin-gonic/gin"
)

// ContextActor holds the *models.User acting on the request.
const ContextActor = "actor"

// ActorLoader resolves the user behind a session.
type ActorLoader func(ctx context.Context, id uint) (*models.User, error)

// LoadActor loads the session user so handlers can pass it to the service.
// Must run after JWTAuth.
func LoadActor(load ActorLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetCurrentUserID(c)
		if userID == 0 {
			abortWithError(c, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := load(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrAuth) {
				abortWithError(c, http.StatusUnauthorized, "session user no longer exists")
				return
			}
			slog.ErrorContext(c.Request.Context(), "load actor", "component", "http", "user_id", userID, "error", err)
			abortWithError(c, http.StatusInternalServerError, "internal server error")
			return
		}

		c.Set(ContextActor, user)
		c.Next()
	}
}

// CurrentActor returns the user loaded by LoadActor, or nil.
func CurrentActor(c *gin.Context) *models.User {
	if v, ok := c.Get(ContextActor); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
