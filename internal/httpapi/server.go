// Package httpapi exposes the keyed table store over HTTP with echo.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"stepstore/internal/stepstore"
	"stepstore/internal/storage"
)

// shutdownTimeout bounds how long in-flight requests may run after Run's
// context is canceled.
const shutdownTimeout = 10 * time.Second

// Server routes table requests to a Store sharing the Manager's connection.
type Server struct {
	store *stepstore.Store
	m     *storage.Manager
	e     *echo.Echo
}

// New builds the router. m must already be connected; Run closes it on the
// way out.
func New(m *storage.Manager) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{store: stepstore.New(m), m: m, e: e}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.e.POST("/tables/:table/schema", s.createSchema)
	owner := s.e.Group("/tables/:table/owners/:trans/:step")
	owner.PUT("", s.save)
	owner.GET("", s.query)
	owner.DELETE("", s.delete)
}

// Handler returns the router for use with httptest or a custom server.
func (s *Server) Handler() http.Handler { return s.e }

// Run serves on addr until ctx is canceled, then drains requests and closes
// the Manager. The returned error joins the serve, shutdown and close
// failures.
func (s *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		log.Printf("httpapi: listening addr=%s", addr)
		if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			return
		}
		errc <- nil
	}()

	var serveErr error
	select {
	case serveErr = <-errc:
		if serveErr != nil {
			serveErr = fmt.Errorf("httpapi: serve: %w", serveErr)
		}
	case <-ctx.Done():
		log.Printf("httpapi: shutting down")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var shutdownErr error
	if err := s.e.Shutdown(sctx); err != nil {
		shutdownErr = fmt.Errorf("httpapi: shutdown: %w", err)
	}
	return errors.Join(serveErr, shutdownErr, s.m.Close())
}
