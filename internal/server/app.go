// Package server wires configuration, storage, services and transports
// together and runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/config"
	"github.com/dmitrijs2005/userservice/internal/server/filestore"
	"github.com/dmitrijs2005/userservice/internal/server/httpapi"
	"github.com/dmitrijs2005/userservice/internal/server/media"
	"github.com/dmitrijs2005/userservice/internal/server/metrics"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userservice/internal/server/services"

	gs "github.com/dmitrijs2005/userservice/internal/server/grpc"
)

const healthCheckInterval = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	storage  filestore.Storage
	metrics  *metrics.Metrics
	accounts *services.AccountService
	auth     *services.AuthService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	storage, err := filestore.New(ctx, c.FileStore())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	mx := metrics.New("userservice")
	processor := metrics.ImageProcessor{
		Next:    media.NewProcessor(storage, c.ImageSize, c.ImageSize, c.ImageQuality),
		Metrics: mx,
	}

	profiles := services.NewProfileService(rm, storage, processor, logger)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		storage:  storage,
		metrics:  mx,
		accounts: services.NewAccountService(db, rm, profiles, logger),
		auth:     services.NewAuthService(db, rm, c, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) httpOptions() httpapi.Options {
	opts := httpapi.Options{
		CORSOrigins:     app.config.CORSOrigins,
		RateLimit:       app.config.RateLimit,
		RateBurst:       app.config.RateBurst,
		ImageURL:        app.storage.URL,
		ShutdownTimeout: app.config.ShutdownTimeout,
	}

	// Only a relative media URL can be served by this process.
	if local, ok := app.storage.(*filestore.Local); ok && strings.HasPrefix(app.config.MediaURL, "/") {
		opts.MediaRoot = local.Root()
		opts.MediaPath = app.config.MediaURL
	}

	return opts
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.logger, app.accounts, app.auth, app.metrics, app.httpOptions())

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.GRPCHealthAddr, app.logger, app.db, healthCheckInterval)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives, ctx is cancelled or one
// of the servers fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCHealthAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}

	app.logger.Info(context.Background(), "App stopped")
}
