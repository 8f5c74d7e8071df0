// Package httpapi exposes the user resource and the token endpoints over
// HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/access"
	"github.com/dmitrijs2005/userservice/internal/server/metrics"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/dmitrijs2005/userservice/internal/server/services"
)

type AccountService interface {
	Create(ctx context.Context, in *services.AccountInput) (*models.AccountWithProfile, error)
	Update(ctx context.Context, existing *models.Account, in *services.AccountInput, partial bool) (*models.AccountWithProfile, error)
	Get(ctx context.Context, id int64) (*models.AccountWithProfile, error)
	List(ctx context.Context) ([]*models.AccountWithProfile, error)
	Delete(ctx context.Context, id int64) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (*models.Account, error)
}

type Options struct {
	CORSOrigins []string
	RateLimit   float64
	RateBurst   int

	// MediaRoot, when set, is served read-only under MediaPath.
	MediaRoot string
	MediaPath string

	// ImageURL turns a stored image path into the URL sent to clients.
	ImageURL func(name string) string

	ShutdownTimeout time.Duration
}

type Server struct {
	address  string
	accounts AccountService
	auth     AuthService
	policy   *access.Policy
	metrics  *metrics.Metrics
	logger   logging.Logger
	opts     Options
	engine   *gin.Engine
}

func NewServer(address string, l logging.Logger, accounts AccountService, auth AuthService, m *metrics.Metrics, opts Options) *Server {
	if opts.ImageURL == nil {
		opts.ImageURL = func(name string) string { return name }
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		address:  address,
		accounts: accounts,
		auth:     auth,
		policy:   access.NewPolicy(),
		metrics:  m,
		logger:   l.With("module", "http_server"),
		opts:     opts,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.recovery(), s.accessLog(), s.metrics.Middleware(), cors.New(s.corsConfig()), s.authenticate())

	createLimiter := s.rateLimiter()
	loginLimiter := s.rateLimiter()

	users := r.Group("/user")
	{
		users.POST("/", createLimiter, s.createAccount)
		users.GET("/", s.listAccounts)
		users.GET("/:id/", s.retrieveAccount)
		users.PUT("/:id/", s.updateAccount)
		users.PATCH("/:id/", s.partialUpdateAccount)
		users.DELETE("/:id/", s.destroyAccount)
	}

	tokens := r.Group("/auth/token")
	{
		tokens.POST("/", loginLimiter, s.obtainToken)
		tokens.POST("/refresh/", s.refreshToken)
	}

	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	if s.opts.MediaRoot != "" {
		path := "/" + strings.Trim(s.opts.MediaPath, "/")
		if path == "/" {
			path = "/media"
		}
		r.Static(path, s.opts.MediaRoot)
	}

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	cfg.MaxAge = 12 * time.Hour

	origins := s.opts.CORSOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
