// Package server wires the CMS backend together: it opens PostgreSQL,
// applies migrations, connects the media bucket and serves the REST API
// until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/EdProwise/beawar-school-sub001/internal/logging"
	"github.com/EdProwise/beawar-school-sub001/internal/server/config"
	"github.com/EdProwise/beawar-school-sub001/internal/server/httpapi"
	"github.com/EdProwise/beawar-school-sub001/internal/server/objectstore"
	"github.com/EdProwise/beawar-school-sub001/internal/server/repositories/repomanager"
	"github.com/EdProwise/beawar-school-sub001/internal/server/services"
)

var (
	openPostgres   = repomanager.OpenPostgres
	newRepoManager = repomanager.NewPostgresRepositoryManager
	newMediaStore  = func(ctx context.Context, cfg *config.Config) (httpapi.MediaStore, error) {
		return objectstore.New(ctx, cfg)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := openPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	media, err := newMediaStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	srv := httpapi.NewServer(&httpapi.Options{
		Address:        c.HTTPAddr,
		Logger:         logger,
		Users:          services.NewUserService(db, rm, c),
		Documents:      services.NewDocumentService(db, rm),
		Media:          media,
		JWTSecret:      []byte(c.SecretKey),
		CORSOrigin:     c.CORSOrigin,
		AuthPerMinute:  c.AuthRateLimitPerMinute,
		MaxUploadBytes: c.MaxUploadBytes,
	})

	return &App{config: c, logger: logger, db: db, server: srv}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a termination signal arrives, then
// stops the HTTP server and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "address", app.config.HTTPAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
