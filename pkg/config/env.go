// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LookupFunc matches os.LookupEnv so tests can pass a map-backed lookup.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment variables on top of the file configuration.
// When several variables map to the same field, the first one set wins.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	first := func(keys ...string) (string, string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return k, strings.TrimSpace(v), true
			}
		}
		return "", "", false
	}

	if _, v, ok := first("LISTEN_ADDRESS"); ok {
		c.Server.ListenAddress = v
	} else if _, v, ok := first("PORT"); ok {
		c.Server.ListenAddress = ":" + v
	}
	if _, v, ok := first("FRONTEND_URL"); ok {
		c.Server.AllowedOrigins = appendUnique(c.Server.AllowedOrigins, v)
	}
	if _, v, ok := first("APP_ENV", "NODE_ENV", "FLASK_ENV"); ok {
		c.Server.Environment = v
	}

	strs := []struct {
		dst  *string
		keys []string
	}{
		{&c.Mail.Provider, []string{"MAIL_PROVIDER"}},
		{&c.Mail.Host, []string{"SMTP_HOST"}},
		{&c.Mail.User, []string{"SMTP_USER", "GMAIL_USER"}},
		{&c.Mail.Password, []string{"SMTP_PASSWORD", "GMAIL_APP_PASSWORD"}},
		{&c.Mail.SenderAddress, []string{"MAIL_FROM"}},
		{&c.Mail.AdminAddress, []string{"ADMIN_EMAIL"}},
		{&c.Mail.APIKey, []string{"RESEND_API_KEY"}},
		{&c.Mail.APIBaseURL, []string{"RESEND_BASE_URL"}},
		{&c.Branding.Name, []string{"BRAND_NAME"}},
		{&c.Telemetry.Endpoint, []string{"OTEL_EXPORTER_OTLP_ENDPOINT"}},
	}
	for _, s := range strs {
		if _, v, ok := first(s.keys...); ok {
			*s.dst = v
		}
	}

	ints := []struct {
		dst *int
		key string
	}{
		{&c.Mail.Port, "SMTP_PORT"},
		{&c.Mail.MaxAttempts, "MAIL_MAX_ATTEMPTS"},
		{&c.Mail.InitialDelayMs, "MAIL_INITIAL_DELAY_MS"},
		{&c.Mail.AttemptTimeoutMs, "MAIL_ATTEMPT_TIMEOUT_MS"},
		{&c.Mail.MaxDelayMs, "MAIL_MAX_DELAY_MS"},
		{&c.Mail.QueueSize, "MAIL_QUEUE_SIZE"},
		{&c.Mail.QueueWorkers, "MAIL_QUEUE_WORKERS"},
	}
	for _, i := range ints {
		if k, v, ok := first(i.key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", k, v, err)
			}
			*i.dst = n
		}
	}

	bools := []struct {
		dst *bool
		key string
	}{
		{&c.Mail.InsecureSkipVerify, "SMTP_INSECURE_SKIP_VERIFY"},
		{&c.Mail.VerifyConnection, "SMTP_VERIFY_CONNECTION"},
		{&c.Mail.Async, "MAIL_ASYNC"},
		{&c.RateLimit.Disabled, "RATE_LIMIT_DISABLED"},
		{&c.Telemetry.Enabled, "OTEL_ENABLED"},
	}
	for _, b := range bools {
		if k, v, ok := first(b.key); ok {
			parsed, err := parseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", k, v, err)
			}
			*b.dst = parsed
		}
	}
	return nil
}

// parseBool accepts the strconv forms plus yes/no and on/off.
func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(v)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
