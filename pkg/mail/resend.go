// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/intrinsic-spiders/contact-relay/pkg/config"
)

// ResendProvider delivers through the Resend HTTP API.
type ResendProvider struct {
	client *resty.Client
	log    *zap.SugaredLogger
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func NewResendProvider(cfg config.Mail, log *zap.SugaredLogger) *ResendProvider {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("resend")
	base := strings.TrimRight(cfg.APIBaseURL, "/")
	if base == "" {
		base = config.DefaultResendBaseURL
	}
	log.Infow("Initializing Resend mail provider", "baseURL", base)
	client := resty.New().
		SetBaseURL(base).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "contact-relay")
	return &ResendProvider{client: client, log: log}
}

func (p *ResendProvider) Name() string {
	return config.ProviderResend
}

// NewSession returns a stateless session; HTTP keep-alive is handled by the
// shared client.
func (p *ResendProvider) NewSession() Transport {
	return &resendSession{client: p.client}
}

type resendSession struct {
	client *resty.Client
}

func (s *resendSession) Send(ctx context.Context, msg *Message) (string, error) {
	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", HeaderSafe(msg.FromName), msg.From)
	}
	payload := resendRequest{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.Body,
		ReplyTo: msg.ReplyTo,
	}

	var out resendResponse
	var apiErr resendError
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return "", &TransportError{Provider: config.ProviderResend, Op: "send", Err: err}
	}
	if resp.IsError() {
		detail := apiErr.Message
		if detail == "" {
			detail = strings.TrimSpace(resp.String())
		}
		if detail == "" {
			detail = resp.Status()
		}
		return "", &TransportError{
			Provider:   config.ProviderResend,
			Op:         "send",
			StatusCode: resp.StatusCode(),
			Err:        errors.New(detail),
		}
	}
	if out.ID == "" {
		return "", &TransportError{
			Provider:   config.ProviderResend,
			Op:         "send",
			StatusCode: resp.StatusCode(),
			Err:        errors.New("response carried no message id"),
		}
	}
	return out.ID, nil
}

func (s *resendSession) Close() error {
	return nil
}
