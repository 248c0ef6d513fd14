package handler

import (
	"net/http"

	customErrors "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/errors"
	"github.com/gin-gonic/gin"
)

// handleError is the only place where domain errors become status codes.
// Internal failures are recorded on the context for the request logger and
// reach the client without detail.
func handleError(c *gin.Context, err error) {
	switch {
	case customErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case customErrors.IsInvalidCode(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
	case customErrors.IsCodeExpired(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "code expired"})
	case customErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case customErrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case customErrors.IsAccountUnverified(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "account not verified"})
	case customErrors.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	case customErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case customErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case customErrors.IsMisconfigured(err):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// handleVerifyError reports code failures on /verificar as 401.
func handleVerifyError(c *gin.Context, err error) {
	switch {
	case customErrors.IsInvalidCode(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
	case customErrors.IsCodeExpired(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "code expired"})
	default:
		handleError(c, err)
	}
}

// bindError hides decoder details, which name Go types and fields.
func bindError(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
