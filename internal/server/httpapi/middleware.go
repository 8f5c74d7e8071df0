package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	limit "github.com/yangxikun/gin-limit-by-key"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/models"
)

const requesterKey = "requester"

// authenticate resolves an optional bearer token. Requests without one are
// anonymous, an invalid token is rejected outright.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if header == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(header, common.BearerPrefix) {
			s.writeError(c, common.ErrInvalidToken)
			c.Abort()
			return
		}

		account, err := s.auth.Authenticate(c.Request.Context(), strings.TrimPrefix(header, common.BearerPrefix))
		if err != nil {
			s.writeError(c, err)
			c.Abort()
			return
		}

		c.Set(requesterKey, account)
		c.Next()
	}
}

func requester(c *gin.Context) *models.Account {
	v, ok := c.Get(requesterKey)
	if !ok {
		return nil
	}
	account, _ := v.(*models.Account)
	return account
}

// rateLimiter throttles per client IP. Every call returns an independent
// limiter set.
func (s *Server) rateLimiter() gin.HandlerFunc {
	return limit.NewRateLimiter(
		func(c *gin.Context) string {
			return c.ClientIP()
		},
		func(c *gin.Context) (*rate.Limiter, time.Duration) {
			return rate.NewLimiter(rate.Limit(s.opts.RateLimit), s.opts.RateBurst), time.Hour
		},
		func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Request was throttled."})
		},
	)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error(c.Request.Context(), "panic while serving request", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
	})
}
