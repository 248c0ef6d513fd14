package middleware

import (
	"context"
	"net/http"

	customErrors "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/jwt"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionKey = "session"

type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (jwt.SessionClaims, error)
}

// RequireSession admits only requests carrying a valid token of a verified
// account. Every token failure looks the same to the caller.
func RequireSession(auth Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		switch {
		case err == nil:
		case customErrors.IsMisconfigured(err):
			log.Error("session check impossible", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		case customErrors.IsInvalidToken(err):
			log.Debug("session rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing session token"})
			return
		default:
			log.Error("session check failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		if !claims.Verified {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account not verified"})
			return
		}
		c.Set(sessionKey, claims)
		c.Next()
	}
}

// Session returns the claims stored by RequireSession.
func Session(c *gin.Context) (jwt.SessionClaims, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return jwt.SessionClaims{}, false
	}
	claims, ok := v.(jwt.SessionClaims)
	return claims, ok
}
