// Package server hosts the HTTP surface of the recommendation engine.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/artrec/hunterd/engine"
	"github.com/artrec/hunterd/engine/metrics"
	"github.com/artrec/hunterd/internal/profile"
	"github.com/artrec/hunterd/search"
	apiv1 "github.com/artrec/hunterd/server/router/api/v1"
	"github.com/artrec/hunterd/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	engine     *engine.Service
	exporter   *metrics.PrometheusExporter
}

func NewServer(_ context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	exporter := metrics.NewPrometheusExporter(metrics.DefaultConfig())
	registry := search.NewDefaultRegistry(profile)
	eng, err := engine.NewService(store, profile, registry, exporter)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
		engine:     eng,
		exporter:   exporter,
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	e.GET("/metrics", echo.WrapHandler(exporter.GetHandler()))

	apiv1.NewAPIV1Service(profile, store, eng).RegisterRoutes(e)

	return s, nil
}

func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", slog.String("address", address))
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}

	slog.Info("server stopped")
}
