package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/davinrkh/finbook/internal/application/service"
	"github.com/davinrkh/finbook/internal/auth"
	"github.com/davinrkh/finbook/internal/domain/entity"
)

const actorKey = "actor"

// UserLookup resolves a token's user id to the full account.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

// AuthMiddleware validates the bearer token and loads the acting user.
// A missing or expired credential yields 401, distinct from not-found
// and validation failures further in.
func AuthMiddleware(tokens *auth.JWTManager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			abortUnauthorized(c, "authorization header must start with Bearer")
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || user == nil {
			abortUnauthorized(c, "account no longer exists")
			return
		}

		c.Set(actorKey, user)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
		Success:   false,
		Error:     message,
		ErrorKind: "authorization",
	})
}

// mustActor returns the authenticated user placed by AuthMiddleware.
func mustActor(c *gin.Context) *entity.User {
	return c.MustGet(actorKey).(*entity.User)
}

// ActivityLogMiddleware appends an audit-trail entry for every mutating
// request that succeeded. Recording is best-effort and never fails the
// request.
func ActivityLogMiddleware(activity service.ActivityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		actor, ok := c.Get(actorKey)
		if !ok {
			return
		}
		user := actor.(*entity.User)

		activity.Record(c.Request.Context(), &entity.ActivityLog{
			UserID:     user.ID,
			Username:   user.Username,
			Action:     fmt.Sprintf("%s %s", c.Request.Method, c.FullPath()),
			IPAddress:  c.ClientIP(),
			DeviceInfo: c.Request.UserAgent(),
		})
	}
}
