package ginserver

import (
	"errors"
	"strings"

	gin "github.com/gin-gonic/gin"

	authservice "plek/internal/app/services/auth"
	domainauth "plek/internal/domain/auth"
	domainuser "plek/internal/domain/user"
)

const (
	contextUserKey  = "plek.user"
	contextTokenKey = "plek.token"
)

// AuthMiddleware resolves a bearer token into the current user. Requests
// without a token pass through anonymously; handlers that need a user call
// requireUser. A token that no longer resolves is rejected outright so
// clients learn to re-authenticate instead of silently degrading to guest.
func AuthMiddleware(auth *authservice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		resolved, err := auth.ResolveToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domainauth.ErrSessionNotFound) ||
				errors.Is(err, domainauth.ErrTokenRequired) ||
				errors.Is(err, authservice.ErrUserBlocked) {
				c.AbortWithStatusJSON(401, gin.H{"error": "invalid or expired session"})
				return
			}
			c.AbortWithStatusJSON(500, gin.H{"error": "internal error"})
			return
		}
		c.Set(contextUserKey, resolved.User)
		c.Set(contextTokenKey, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func currentUser(c *gin.Context) (*domainuser.User, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*domainuser.User)
	return user, ok
}

func currentToken(c *gin.Context) string {
	value, ok := c.Get(contextTokenKey)
	if !ok {
		return ""
	}
	token, _ := value.(string)
	return token
}

func requireUser(c *gin.Context) (*domainuser.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		c.AbortWithStatusJSON(401, gin.H{"error": "authentication required"})
		return nil, false
	}
	return user, true
}
