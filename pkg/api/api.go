// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/intrinsic-spiders/contact-relay/pkg/apiresponses"
	"github.com/intrinsic-spiders/contact-relay/pkg/config"
	"github.com/intrinsic-spiders/contact-relay/pkg/metrics"
	"github.com/intrinsic-spiders/contact-relay/pkg/system"
	"github.com/intrinsic-spiders/contact-relay/pkg/telemetry"
	"github.com/intrinsic-spiders/contact-relay/pkg/version"
)

type APIController interface {
	BasePath() string
	Register(rg *gin.RouterGroup) error
	Handlers() []gin.HandlerFunc
}

type Server struct {
	gin    *gin.Engine
	config config.Server
	log    *zap.SugaredLogger

	mu      sync.Mutex
	closers []func()
	closed  bool
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewServer(log *zap.Logger, cfg config.Server, debug bool) (*Server, error) {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
		system.RequestLogger(log.Sugar()),
		telemetry.Middleware(),
		cors.New(corsConfig(cfg)),
	)

	// nil disables trusting X-Forwarded-For entirely
	var proxies []string
	if len(cfg.TrustedProxies) > 0 {
		proxies = cfg.TrustedProxies
	}
	if err := engine.SetTrustedProxies(proxies); err != nil {
		return nil, fmt.Errorf("invalid server.trustedProxies: %w", err)
	}

	s := &Server{
		gin:    engine,
		config: cfg,
		log:    log.Sugar().Named("api"),
	}

	engine.GET("/health", s.getHealth)
	engine.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))
	engine.GET("/api/version", s.getVersion)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apiresponses.Envelope{Message: "Not found"})
	})

	return s, nil
}

func corsConfig(cfg config.Server) cors.Config {
	cc := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", system.RequestIDHeader},
		ExposeHeaders:    []string{system.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.AllowsAnyOrigin() {
		// AllowAllOrigins cannot be combined with credentials, so echo the origin instead
		cc.AllowOriginFunc = func(string) bool { return true }
	} else {
		cc.AllowOrigins = cfg.AllowedOrigins
	}
	return cc
}

func (s *Server) RegisterAll(controllers []APIController) error {
	r := s.gin.Group("api")
	for _, c := range controllers {
		if err := c.Register(r.Group(c.BasePath(), c.Handlers()...)); err != nil {
			return err
		}
	}
	return nil
}

// OnClose registers fn to run once when the server is closed.
func (s *Server) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, fn)
}

// Close runs the registered cleanup functions. It is safe to call twice.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	for _, fn := range closers {
		fn()
	}
}

func (s *Server) Handler() http.Handler {
	return s.gin
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then drains in-flight requests
// within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	timeout, err := s.config.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.gin,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("HTTP server listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Infow("Shutting down HTTP server", "timeout", timeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("HTTP server stopped")
	return nil
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Message: "Server is running"})
}

func (s *Server) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.GetBuildInfo())
}
