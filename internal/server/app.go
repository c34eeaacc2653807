// Package server wires configuration, storage, media, metrics and the
// session services together and runs the HTTP and gRPC listeners until the
// process is asked to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Batajoo/youtube-backend-clone/internal/logging"
	"github.com/Batajoo/youtube-backend-clone/internal/server/config"
	"github.com/Batajoo/youtube-backend-clone/internal/server/httpapi"
	"github.com/Batajoo/youtube-backend-clone/internal/server/media"
	"github.com/Batajoo/youtube-backend-clone/internal/server/metrics"
	"github.com/Batajoo/youtube-backend-clone/internal/server/repositories/repomanager"
	"github.com/Batajoo/youtube-backend-clone/internal/server/services"

	gs "github.com/Batajoo/youtube-backend-clone/internal/server/grpc"
)

const readHeaderTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	media   media.Store
	metrics *metrics.Metrics
	users   *services.UserService
}

// NewApp validates c and opens every backing dependency. Log output goes to
// logOut, os.Stdout when nil.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logOut == nil {
		logOut = os.Stdout
	}
	logger := logging.New(c.LogLevel, c.LogFormat, logOut)

	repos, err := openRepositories(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	store, err := openMediaStore(ctx, c, logger)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	m := metrics.New()
	users := services.NewUserService(repos, store, c, logger, services.WithRecorder(m))

	return &App{config: c, logger: logger, repos: repos, media: store, metrics: m, users: users}, nil
}

func openRepositories(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, using in-memory user store")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	rm, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	return rm, nil
}

func openMediaStore(ctx context.Context, c *config.Config, logger logging.Logger) (media.Store, error) {
	if c.S3Bucket == "" {
		logger.Warn(ctx, "no bucket configured, keeping uploads in memory")
		return media.NewMemoryStore(c.S3PublicBaseURL), nil
	}

	store, err := media.NewS3Store(ctx, media.S3Config{
		Region:        c.S3Region,
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		Bucket:        c.S3Bucket,
		BaseEndpoint:  c.S3BaseEndpoint,
		PublicBaseURL: c.S3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("media store init error: %w", err)
	}
	return store, nil
}

// Users exposes the service layer to operator commands.
func (app *App) Users() *services.UserService { return app.users }

// Close releases the backing stores. Run calls it on exit.
func (app *App) Close() error { return app.repos.Close() }

// Handler returns the REST API with its middleware chain.
func (app *App) Handler() http.Handler {
	return httpapi.NewHandler(app.users, app.logger, httpapi.Options{
		Cookies:        httpapi.CookiePolicy{Secure: app.config.CookieSecure},
		AccessTTL:      app.config.AccessTokenValidityDuration,
		RefreshTTL:     app.config.RefreshTokenValidityDuration,
		RequestTimeout: app.config.RequestTimeout,
		MaxUploadBytes: app.config.MaxUploadBytes,
		Health:         app.repos,
		Metrics:        app.metrics,
	}).Routes()
}

// httpServer builds the REST server. Request contexts carry ctx's values
// but not its cancellation, so in-flight requests drain during Shutdown.
func (app *App) httpServer(ctx context.Context) *http.Server {
	base := context.WithoutCancel(ctx)
	return &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
}

// Run serves HTTP and gRPC until ctx is done or a termination signal
// arrives, then drains both within the configured shutdown timeout.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer func() {
		if err := app.Close(); err != nil {
			app.logger.Error(context.Background(), "close repositories", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	listen, err := net.Listen("tcp", app.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}

	httpSrv := app.httpServer(ctx)
	grpcSrv := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.users, app.metrics)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		if err := httpSrv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := grpcSrv.Run(ctx); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	err = g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}
