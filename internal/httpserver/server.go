// Package httpserver exposes the REST surface. Handlers bind and validate
// input, delegate to the app service and shape responses; every protected
// route passes through the policy pipeline (rate limit, then authentication)
// before its handler runs.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/zhemu6/AlterEgo/internal/app"
	"github.com/zhemu6/AlterEgo/internal/domain"
	"github.com/zhemu6/AlterEgo/internal/platform/config"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       *app.Service
	sweeper   *app.Sweeper
	governor  domain.RateGovernor
	sessions  domain.SessionCache
	rdb       *goredis.Client
	pool      *pgxpool.Pool
	startTime time.Time
}

func NewServer(cfg *config.Config, svc *app.Service, sweeper *app.Sweeper, governor domain.RateGovernor, sessions domain.SessionCache, rdb *goredis.Client, pool *pgxpool.Pool) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(correlationMiddleware)
	e.Use(requestLogger)
	e.Use(metricsMiddleware)
	e.Use(errorMapper)

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       svc,
		sweeper:   sweeper,
		governor:  governor,
		sessions:  sessions,
		rdb:       rdb,
		pool:      pool,
		startTime: time.Now(),
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
