// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/intrinsic-spiders/contact-relay/pkg/api"
	"github.com/intrinsic-spiders/contact-relay/pkg/config"
	"github.com/intrinsic-spiders/contact-relay/pkg/contact"
	"github.com/intrinsic-spiders/contact-relay/pkg/mail"
	"github.com/intrinsic-spiders/contact-relay/pkg/ratelimit"
)

// App is the fully wired relay.
type App struct {
	Server     *api.Server
	Provider   mail.Provider
	Sequencer  *mail.Sequencer
	Dispatcher *mail.Dispatcher
	Limiter    *ratelimit.IPRateLimiter
}

// NewApp wires the mail stack, the contact controller and the HTTP server.
// Missing mail credentials are only warned about; requests then fail with a
// configuration error until the process is restarted with them.
func NewApp(cfg config.Config, log *zap.Logger, debug bool) (*App, error) {
	slog := log.Sugar()

	if err := cfg.Mail.CheckCredentials(); err != nil {
		slog.Warnw("Mail credentials incomplete; contact submissions will be rejected", "error", err)
	}

	provider, err := mail.NewProvider(cfg.Mail, slog)
	if err != nil {
		return nil, err
	}
	deliverer := mail.NewDeliverer(mail.PolicyFromConfig(cfg.Mail), provider.Name(), slog)
	sequencer := mail.NewSequencer(provider, deliverer, slog).WithVerify(cfg.Mail.VerifyConnection)

	app := &App{Provider: provider, Sequencer: sequencer}

	opts := contact.ControllerOptions{
		Composer:     contact.NewComposer(cfg.Branding, cfg.Mail.SenderAddress, cfg.Mail.AdminAddress),
		Sender:       sequencer,
		Credentials:  cfg.Mail.CheckCredentials,
		ExposeErrors: !cfg.Server.IsProduction(),
	}

	if cfg.Mail.Async {
		app.Dispatcher = mail.NewDispatcher(sequencer, provider.Name(), slog, cfg.Mail.QueueWorkers, cfg.Mail.QueueSize)
		opts.Dispatcher = app.Dispatcher
	}

	if !cfg.RateLimit.Disabled {
		app.Limiter = ratelimit.New(ratelimit.FromConfig(cfg.RateLimit))
		opts.Middleware = []gin.HandlerFunc{app.Limiter.Middleware("contact")}
	}

	server, err := api.NewServer(log, cfg.Server, debug)
	if err != nil {
		app.stopLimiter()
		return nil, err
	}
	if app.Limiter != nil {
		server.OnClose(app.Limiter.Stop)
	}
	app.Server = server

	if err := server.RegisterAll([]api.APIController{
		contact.NewController(slog, opts),
	}); err != nil {
		server.Close()
		return nil, fmt.Errorf("registering controllers: %w", err)
	}

	slog.Infow("Contact relay configured",
		"provider", provider.Name(),
		"sender", mail.RedactAddress(cfg.Mail.SenderAddress),
		"admin", mail.RedactAddress(cfg.Mail.AdminAddress),
		"maxAttempts", deliverer.Policy().MaxAttempts,
		"async", cfg.Mail.Async,
		"rateLimited", app.Limiter != nil,
		"environment", cfg.Server.Environment)
	return app, nil
}

// Start launches background workers.
func (a *App) Start() {
	if a.Dispatcher != nil {
		a.Dispatcher.Start()
	}
}

// Shutdown drains queued deliveries within ctx and releases the server's
// background resources.
func (a *App) Shutdown(ctx context.Context) error {
	defer a.Server.Close()
	if a.Dispatcher != nil {
		if err := a.Dispatcher.Stop(ctx); err != nil {
			return fmt.Errorf("draining mail queue: %w", err)
		}
	}
	return nil
}

func (a *App) stopLimiter() {
	if a.Limiter != nil {
		a.Limiter.Stop()
	}
}
