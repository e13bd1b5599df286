// Package httpapi is the thin hosting surface over the guide services. It
// parses language and pagination input, applies the platform's default
// language as the fallback on reads, and maps typed service errors to HTTP
// statuses. No entity logic lives here.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/guia/internal/db"
	"horse.fit/guia/internal/guide"
	"horse.fit/guia/internal/language"
)

type Options struct {
	Host            string
	Port            int
	DefaultLanguage string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	pool   *db.Pool
	guide  *guide.Guide
	logger zerolog.Logger
	opts   Options
}

func NewServer(pool *db.Pool, g *guide.Guide, logger zerolog.Logger, opts Options) *Server {
	if opts.Host == "" {
		opts.Host = "0.0.0.0"
	}
	if opts.Port <= 0 {
		opts.Port = 8090
	}
	if language.NormalizeCode(opts.DefaultLanguage) == "" {
		opts.DefaultLanguage = language.DefaultCode
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	return &Server{
		pool:   pool,
		guide:  g,
		logger: logger,
		opts:   opts,
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.pool == nil || s.guide == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.router()

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
		s.logger.Info().Str("addr", addr).Msg("http server starting")

		server := &http.Server{
			Addr:         addr,
			ReadTimeout:  s.opts.ReadTimeout,
			WriteTimeout: s.opts.WriteTimeout,
		}
		if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}

func (s *Server) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	e.GET("/healthz", s.handleHealth)

	api := e.Group("/api/v1")
	registerResource(api, "cities", s.guide.Cities, s.opts, []string{"state", "isCapital", "searchLang"})
	registerResource(api, "categories", s.guide.Categories, s.opts, []string{"slug", "searchLang"})
	registerResource(api, "locations", s.guide.Locations, s.opts, []string{"cityId", "categoryId", "searchLang"})
	registerResource(api, "routes", s.guide.Routes, s.opts, []string{"cityId", "searchLang"})
	registerResource(api, "events", s.guide.Events, s.opts, []string{"cityId", "isFree", "searchLang"})
	registerResource(api, "stories", s.guide.Stories, s.opts, []string{"locationId", "searchLang"})

	return e
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.pool.DB().PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
