package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/services"
)

const (
	msgNotAuthenticated = "Authentication credentials were not provided."
	msgBadToken         = "Given token not valid for any token type"
	msgBadCredentials   = "No active account found with the given credentials"
	msgForbidden        = "You do not have permission to perform this action."
	msgNotFound         = "Not found."
	msgServerError      = "A server error occurred."
)

// writeError translates a service error into a status code and body.
func (s *Server) writeError(c *gin.Context, err error) {
	if verr, ok := services.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, verr)
		return
	}

	var rerr *requestError
	switch {
	case errors.As(err, &rerr):
		c.JSON(http.StatusBadRequest, gin.H{"detail": rerr.msg})
	case errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		unauthorized(c, msgBadToken)
	case errors.Is(err, common.ErrorUnauthorized):
		unauthorized(c, msgNotAuthenticated)
	case errors.Is(err, common.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"detail": msgForbidden})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": msgNotFound})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgServerError})
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.JSON(http.StatusUnauthorized, gin.H{"detail": msg})
}
