package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/reparto/backend/internal/domain/identity"
	"github.com/reparto/backend/internal/infrastructure/auth"
	"github.com/reparto/backend/internal/interfaces/http/dto"
)

const (
	// ActorKey holds the resolved identity.Actor in the gin context
	ActorKey = "actor"

	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTAuthMiddleware validates the bearer token and stores the resolved
// actor in the context. Every mutation downstream takes the actor
// explicitly, so resolution happens exactly once, here.
func JWTAuthMiddleware(jwtService *auth.JWTService, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Token validation failed")
			return
		}

		actor, err := claims.ToActor()
		if err != nil {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Token carries an invalid identity")
			return
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// GetActor returns the authenticated actor from the context
func GetActor(c *gin.Context) (identity.Actor, bool) {
	value, exists := c.Get(ActorKey)
	if !exists {
		return identity.Actor{}, false
	}
	actor, ok := value.(identity.Actor)
	return actor, ok
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}
