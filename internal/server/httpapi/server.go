// Package httpapi exposes the CMS backend over REST with echo.
//
// Table routes live under /api/:table, authentication under /api/auth and
// media under /api/storage and /api/upload. Reads are public; writes need a
// bearer token issued by sign-in or sign-up.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EdProwise/beawar-school-sub001/internal/logging"
	"github.com/EdProwise/beawar-school-sub001/internal/server/repositories/documents"
	"github.com/EdProwise/beawar-school-sub001/internal/server/services"
)

// UserService is the account side of the backend.
type UserService interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*services.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*services.AuthResult, error)
	GetUser(ctx context.Context, userID string) (*services.SessionUser, error)
}

// DocumentService is the table side of the backend.
type DocumentService interface {
	List(ctx context.Context, table string, req services.ListRequest) (*services.ListResult, error)
	Create(ctx context.Context, table string, data map[string]any) (map[string]any, error)
	Upsert(ctx context.Context, table string, payload any) (any, error)
	Patch(ctx context.Context, table, id string, data map[string]any) (map[string]any, error)
	Delete(ctx context.Context, table, id string) (map[string]any, error)
	DeleteMany(ctx context.Context, table string, filters []documents.Filter) (int64, error)
}

// MediaStore keeps uploaded files.
type MediaStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Remove(ctx context.Context, keys []string) ([]string, error)
	PublicURL(ctx context.Context, key string) (string, error)
}

type Options struct {
	Address        string
	Logger         logging.Logger
	Users          UserService
	Documents      DocumentService
	Media          MediaStore
	JWTSecret      []byte
	CORSOrigin     string
	AuthPerMinute  int
	MaxUploadBytes int64
	// Now stamps generated upload keys; time.Now when nil.
	Now func() time.Time
	// DisableReqLogs silences the per-request log line, mostly for tests.
	DisableReqLogs bool
}

type Server struct {
	opts   *Options
	app    *echo.Echo
	logger logging.Logger
	now    func() time.Time
}

func NewServer(opts *Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		opts:   opts,
		app:    echo.New(),
		logger: logger.With("module", "http_server"),
		now:    now,
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true
	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.logger)
	s.app.Validator = &requestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.Recover())
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{s.opts.CORSOrigin},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	s.app.Use(metricsMiddleware)
	if !s.opts.DisableReqLogs {
		s.app.Use(s.requestLogger())
	}

	s.app.GET("/health", health)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	requireAuth := authMiddleware(s.opts.JWTSecret)
	api := s.app.Group("/api")

	ah := &authHandler{users: s.opts.Users}
	authGroup := api.Group("/auth")
	authGroup.POST("/signin", ah.signIn, rateLimitMiddleware(s.opts.AuthPerMinute))
	authGroup.POST("/signup", ah.signUp, rateLimitMiddleware(s.opts.AuthPerMinute))
	authGroup.GET("/user", ah.user, requireAuth)

	sh := &storageHandler{media: s.opts.Media, now: s.now}
	upload := middleware.BodyLimit(strconv.FormatInt(s.opts.MaxUploadBytes, 10) + "B")
	api.POST("/storage/upload", sh.upload, requireAuth, upload)
	api.DELETE("/storage/remove", sh.remove, requireAuth)
	api.GET("/storage/public/*", sh.public)
	api.POST("/upload", sh.uploadFile, requireAuth, upload)

	th := &tableHandler{docs: s.opts.Documents}
	api.GET("/:table", th.list)
	api.POST("/:table", th.create, requireAuth)
	api.POST("/:table/upsert", th.upsert, requireAuth)
	api.PATCH("/:table/:id", th.patch, requireAuth)
	api.DELETE("/:table/:id", th.delete, requireAuth)
	api.DELETE("/:table", th.deleteMany, requireAuth)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "remote_ip", v.RemoteIP}
			if v.Error != nil {
				s.logger.Warn(c.Request().Context(), "request failed", append(args, "error", v.Error)...)
				return nil
			}
			s.logger.Info(c.Request().Context(), "request served", args...)
			return nil
		},
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)
		if err := s.app.Start(s.opts.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.Shutdown(shutdownCtx)
}

// ServeHTTP lets tests drive the router directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
