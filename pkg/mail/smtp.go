// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/intrinsic-spiders/contact-relay/pkg/config"
)

// SMTPProvider sends over an authenticated SMTP connection. Port 465 uses
// implicit TLS, other ports upgrade with STARTTLS when the server offers it.
type SMTPProvider struct {
	dialer *gomail.Dialer
	log    *zap.SugaredLogger
}

func NewSMTPProvider(cfg config.Mail, log *zap.SugaredLogger) *SMTPProvider {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("smtp")
	log.Infow("Initializing SMTP mail provider", "host", cfg.Host, "port", cfg.Port, "user", RedactAddress(cfg.User))
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	if cfg.InsecureSkipVerify {
		log.Warn("InsecureSkipVerify is enabled for the SMTP TLS connection")
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host} //nolint:gosec // opt-in for self-signed relays
	}
	return &SMTPProvider{dialer: d, log: log}
}

func (p *SMTPProvider) Name() string {
	return config.ProviderSMTP
}

func (p *SMTPProvider) Host() string {
	return p.dialer.Host
}

func (p *SMTPProvider) Port() int {
	return p.dialer.Port
}

// NewSession returns a session that dials on first use and reuses the
// connection for the sends that follow.
func (p *SMTPProvider) NewSession() Transport {
	return &smtpSession{dialer: p.dialer, log: p.log}
}

type smtpSession struct {
	dialer *gomail.Dialer
	log    *zap.SugaredLogger

	mu     sync.Mutex
	idle   gomail.SendCloser
	closed bool
}

// checkout hands out the idle connection or dials a new one. A connection
// is owned by exactly one attempt at a time.
func (s *smtpSession) checkout() (gomail.SendCloser, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if c := s.idle; c != nil {
		s.idle = nil
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	c, err := s.dialer.Dial()
	if err != nil {
		return nil, &TransportError{Provider: config.ProviderSMTP, Op: "dial", Err: err}
	}
	return c, nil
}

// checkin returns a healthy connection to the session. An attempt that
// finishes after its session was closed, or after another attempt parked a
// connection, closes its own.
func (s *smtpSession) checkin(c gomail.SendCloser) {
	s.mu.Lock()
	if s.closed || s.idle != nil {
		s.mu.Unlock()
		s.quit(c)
		return
	}
	s.idle = c
	s.mu.Unlock()
}

func (s *smtpSession) quit(c gomail.SendCloser) {
	if err := c.Close(); err != nil {
		s.log.Debugw("Closing SMTP connection failed", "error", err)
	}
}

func (s *smtpSession) Verify(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := s.checkout()
	if err != nil {
		return err
	}
	s.checkin(c)
	return nil
}

func (s *smtpSession) Send(ctx context.Context, msg *Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c, err := s.checkout()
	if err != nil {
		return "", err
	}

	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), msg.senderDomain())
	if err := gomail.Send(c, buildGomailMessage(msg, id)); err != nil {
		// the connection state is unknown after a failed transaction
		s.quit(c)
		return "", &TransportError{Provider: config.ProviderSMTP, Op: "send", Err: err}
	}
	s.checkin(c)
	return id, nil
}

func (s *smtpSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	c := s.idle
	s.idle = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	if err := c.Close(); err != nil {
		return &TransportError{Provider: config.ProviderSMTP, Op: "close", Err: err}
	}
	return nil
}

func buildGomailMessage(msg *Message, id string) *gomail.Message {
	m := gomail.NewMessage()
	if msg.FromName != "" {
		m.SetAddressHeader("From", msg.From, msg.FromName)
	} else {
		m.SetHeader("From", msg.From)
	}
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", id)
	m.SetDateHeader("Date", time.Now())
	m.SetBody("text/html", msg.Body)
	return m
}
