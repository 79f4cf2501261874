package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"go.ntppool.org/imagerotate/selector"
	"go.ntppool.org/imagerotate/server/metrics"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg *Config
	sel *selector.Selector
	log *slog.Logger
	e   *echo.Echo
}

type Config struct {
	Listen string

	// Registry receives the http request metrics when set
	Registry prometheus.Registerer
}

func NewServer(ctx context.Context, log *slog.Logger, cfg Config, sel *selector.Selector) (*Server, error) {
	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg: &cfg,
		sel: sel,
		log: log,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(otelecho.Middleware("imagerotate"))
	e.Use(srv.requestLogger())
	e.Use(slogecho.New(log))
	if cfg.Registry != nil {
		e.Use(metrics.New(cfg.Registry).Middleware())
	}
	e.Use(middleware.Recover())

	e.GET("/", srv.showImage)
	e.GET("/api/image", srv.imageJSON)
	e.GET("/api/status", srv.status)

	srv.e = e

	log.DebugContext(ctx, "http server configured",
		"listen", cfg.Listen,
		"request_metrics", cfg.Registry != nil,
	)

	return srv, nil
}

// Handler returns the http handler, for tests and embedding.
func (srv *Server) Handler() http.Handler {
	return srv.e
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (srv *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	srv.log.InfoContext(ctx, "starting http server", "listen", srv.cfg.Listen)

	go func() {
		errCh <- srv.e.Start(srv.cfg.Listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	srv.log.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.e.Shutdown(shutdownCtx)
}
