// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Mail providers
const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
)

const (
	DefaultListenAddress    = ":3000"
	DefaultEnvironment      = "production"
	DefaultShutdownTimeout  = 30 * time.Second
	DefaultSMTPHost         = "smtp.gmail.com"
	DefaultSMTPPort         = 465
	DefaultResendBaseURL    = "https://api.resend.com"
	DefaultResendSender     = "onboarding@resend.dev"
	DefaultMaxAttempts      = 3
	DefaultInitialDelayMs   = 2000
	DefaultAttemptTimeoutMs = 15000
	DefaultQueueSize        = 100
	DefaultQueueWorkers     = 2
	DefaultBrandName        = "Intrinsic Spiders"
	DefaultAdminSenderName  = "Website Contact Form"
	DefaultResponseTime     = "24 hours"
)

type Server struct {
	ListenAddress string `yaml:"listenAddress"`
	// AllowedOrigins lists CORS origins. Empty or containing "*" allows any origin.
	AllowedOrigins []string `yaml:"allowedOrigins"`
	TrustedProxies []string `yaml:"trustedProxies"`
	// Environment is "production" or "development". Error details are only
	// returned to HTTP callers outside production.
	Environment     string `yaml:"environment"`
	ShutdownTimeout string `yaml:"shutdownTimeout"`
}

type Mail struct {
	// Provider is "smtp" (default) or "resend".
	Provider string `yaml:"provider"`

	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
	// VerifyConnection opens the SMTP connection before the first send of each
	// submission. Off by default; some hosts hang on it.
	VerifyConnection bool `yaml:"verifyConnection"`

	APIKey     string `yaml:"apiKey"`
	APIBaseURL string `yaml:"apiBaseURL"`

	// SenderAddress defaults to User.
	SenderAddress string `yaml:"senderAddress"`
	// AdminAddress receives the notification; defaults to SenderAddress.
	AdminAddress string `yaml:"adminAddress"`

	MaxAttempts int `yaml:"maxAttempts"`
	// InitialDelayMs is the first backoff delay; a negative value disables backoff.
	InitialDelayMs int `yaml:"initialDelayMs"`
	// AttemptTimeoutMs bounds each send attempt; a negative value disables the bound.
	AttemptTimeoutMs int `yaml:"attemptTimeoutMs"`
	// MaxDelayMs caps the backoff; zero leaves it uncapped.
	MaxDelayMs int `yaml:"maxDelayMs"`

	Async        bool `yaml:"async"`
	QueueSize    int  `yaml:"queueSize"`
	QueueWorkers int  `yaml:"queueWorkers"`
}

type ContactChannel struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

type Branding struct {
	Name            string           `yaml:"name"`
	AdminSenderName string           `yaml:"adminSenderName"`
	ResponseTime    string           `yaml:"responseTime"`
	ContactChannels []ContactChannel `yaml:"contactChannels"`
}

type RateLimit struct {
	Disabled          bool    `yaml:"disabled"`
	RequestsPerMinute float64 `yaml:"requestsPerMinute"`
	Burst             int     `yaml:"burst"`
}

type Telemetry struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	Insecure     bool    `yaml:"insecure"`
	SamplingRate float64 `yaml:"samplingRate"`
}

type Config struct {
	Server    Server    `yaml:"server"`
	Mail      Mail      `yaml:"mail"`
	Branding  Branding  `yaml:"branding"`
	RateLimit RateLimit `yaml:"rateLimit"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Load reads the YAML configuration at path. An empty path yields a zero
// Config so that environment variables and defaults alone can drive the relay.
func Load(path string) (Config, error) {
	var config Config
	if path == "" {
		return config, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("trying to open config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, &config); err != nil {
		return config, fmt.Errorf("error unmarshaling YAML %s: %w", path, err)
	}
	return config, nil
}

// Defaults fills every unset field. It must run after ApplyEnv so that the
// sender and admin fallbacks see the final credentials.
func (c *Config) Defaults() {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = DefaultListenAddress
	}
	if c.Server.Environment == "" {
		c.Server.Environment = DefaultEnvironment
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout.String()
	}

	m := &c.Mail
	m.Provider = strings.ToLower(strings.TrimSpace(m.Provider))
	if m.Provider == "" {
		m.Provider = ProviderSMTP
	}
	if m.Host == "" {
		m.Host = DefaultSMTPHost
	}
	if m.Port == 0 {
		m.Port = DefaultSMTPPort
	}
	if m.APIBaseURL == "" {
		m.APIBaseURL = DefaultResendBaseURL
	}
	if m.SenderAddress == "" {
		m.SenderAddress = m.User
	}
	if m.SenderAddress == "" && m.Provider == ProviderResend {
		m.SenderAddress = DefaultResendSender
	}
	if m.AdminAddress == "" {
		m.AdminAddress = m.SenderAddress
	}
	if m.MaxAttempts <= 0 {
		m.MaxAttempts = DefaultMaxAttempts
	}
	if m.InitialDelayMs == 0 {
		m.InitialDelayMs = DefaultInitialDelayMs
	}
	if m.AttemptTimeoutMs == 0 {
		m.AttemptTimeoutMs = DefaultAttemptTimeoutMs
	}
	if m.QueueSize <= 0 {
		m.QueueSize = DefaultQueueSize
	}
	if m.QueueWorkers <= 0 {
		m.QueueWorkers = DefaultQueueWorkers
	}

	if c.Branding.Name == "" {
		c.Branding.Name = DefaultBrandName
	}
	if c.Branding.AdminSenderName == "" {
		c.Branding.AdminSenderName = DefaultAdminSenderName
	}
	if c.Branding.ResponseTime == "" {
		c.Branding.ResponseTime = DefaultResponseTime
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		c.RateLimit.RequestsPerMinute = 10
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 5
	}

	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = "otlp"
	}
	if c.Telemetry.SamplingRate == 0 {
		c.Telemetry.SamplingRate = 1.0
	}
}

// Validate reports problems that make the process unable to start. Missing
// mail credentials are not among them; see Mail.CheckCredentials.
func (c Config) Validate() error {
	switch c.Mail.Provider {
	case ProviderSMTP, ProviderResend:
	default:
		return fmt.Errorf("unknown mail provider %q: supported values are %s, %s", c.Mail.Provider, ProviderSMTP, ProviderResend)
	}
	if c.Mail.Port < 1 || c.Mail.Port > 65535 {
		return fmt.Errorf("mail port %d out of range", c.Mail.Port)
	}
	if _, err := c.Server.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// IsProduction reports whether error details must be hidden from HTTP callers.
func (s Server) IsProduction() bool {
	switch strings.ToLower(s.Environment) {
	case "development", "dev", "local", "test":
		return false
	}
	return true
}

// AllowsAnyOrigin reports whether CORS should accept every origin.
func (s Server) AllowsAnyOrigin() bool {
	if len(s.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range s.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (s Server) ShutdownTimeoutDuration() (time.Duration, error) {
	if s.ShutdownTimeout == "" {
		return DefaultShutdownTimeout, nil
	}
	d, err := time.ParseDuration(s.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid server.shutdownTimeout %q: %w", s.ShutdownTimeout, err)
	}
	return d, nil
}

// InitialDelay returns zero when backoff is disabled.
func (m Mail) InitialDelay() time.Duration {
	if m.InitialDelayMs < 0 {
		return 0
	}
	return time.Duration(m.InitialDelayMs) * time.Millisecond
}

// AttemptTimeout returns zero when the per-attempt bound is disabled.
func (m Mail) AttemptTimeout() time.Duration {
	if m.AttemptTimeoutMs < 0 {
		return 0
	}
	return time.Duration(m.AttemptTimeoutMs) * time.Millisecond
}

func (m Mail) MaxDelay() time.Duration {
	return time.Duration(m.MaxDelayMs) * time.Millisecond
}

// CheckCredentials returns a *ConfigurationError naming every credential the
// selected provider still lacks.
func (m Mail) CheckCredentials() error {
	var missing []string
	switch m.Provider {
	case ProviderResend:
		if m.APIKey == "" {
			missing = append(missing, "mail.apiKey (RESEND_API_KEY)")
		}
	default:
		if m.User == "" {
			missing = append(missing, "mail.user (GMAIL_USER)")
		}
		if m.Password == "" {
			missing = append(missing, "mail.password (GMAIL_APP_PASSWORD)")
		}
	}
	if len(missing) == 0 && m.SenderAddress == "" {
		missing = append(missing, "mail.senderAddress (MAIL_FROM)")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}
