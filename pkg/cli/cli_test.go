// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/intrinsic-spiders/contact-relay/pkg/config"
)

func envMap(m map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestGetEnvString(t *testing.T) {
	t.Setenv("CONTACT_RELAY_TEST_ENV", "custom-value")

	if got := getEnvString("CONTACT_RELAY_TEST_ENV", "default"); got != "custom-value" {
		t.Fatalf("expected env override, got %s", got)
	}

	if got := getEnvString("CONTACT_RELAY_UNKNOWN_ENV", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("CONTACT_RELAY_BOOL_TRUE", "true")
	if !getEnvBool("CONTACT_RELAY_BOOL_TRUE", false) {
		t.Fatal("expected true when env variable explicitly true")
	}

	t.Setenv("CONTACT_RELAY_BOOL_FALSE", "false")
	if getEnvBool("CONTACT_RELAY_BOOL_FALSE", true) {
		t.Fatal("expected false when env variable explicitly false")
	}

	t.Setenv("CONTACT_RELAY_BOOL_INVALID", "sometimes")
	if !getEnvBool("CONTACT_RELAY_BOOL_INVALID", true) {
		t.Fatal("expected fallback default when env value invalid")
	}

	if getEnvBool("CONTACT_RELAY_BOOL_MISSING", false) {
		t.Fatal("expected default false when env missing")
	}
}

func TestGetEnvBool_AllVariants(t *testing.T) {
	for _, val := range []string{"true", "TRUE", "1", "yes", "Yes"} {
		t.Run(val, func(t *testing.T) {
			t.Setenv("TEST_BOOL", val)
			assert.True(t, getEnvBool("TEST_BOOL", false), "expected true for %q", val)
		})
	}
	for _, val := range []string{"false", "FALSE", "0", "no", "NO"} {
		t.Run(val, func(t *testing.T) {
			t.Setenv("TEST_BOOL", val)
			assert.False(t, getEnvBool("TEST_BOOL", true), "expected false for %q", val)
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	t.Setenv("CONTACT_RELAY_CONFIG", "/etc/relay.yaml")
	t.Setenv("CONTACT_RELAY_ENV_FILE", "prod.env")
	t.Setenv("DEBUG", "1")

	o := DefaultOptions()

	assert.Equal(t, "/etc/relay.yaml", o.ConfigPath)
	assert.Equal(t, "prod.env", o.EnvFile)
	assert.True(t, o.Debug)
}

func TestPrint(t *testing.T) {
	o := Options{ConfigPath: "relay.yaml", Debug: true}
	o.Print(zaptest.NewLogger(t).Sugar())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mail:
  provider: resend
  apiKey: from-file
branding:
  name: File Brand
`), 0o600))

	o := Options{
		ConfigPath: path,
		Lookup:     envMap(map[string]string{"RESEND_API_KEY": "from-env", "PORT": "8080"}),
	}
	cfg, err := o.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Mail.APIKey, "environment wins over the file")
	assert.Equal(t, "File Brand", cfg.Branding.Name)
	assert.Equal(t, ":8080", cfg.Server.ListenAddress)
	assert.Equal(t, config.DefaultResendSender, cfg.Mail.SenderAddress)
	assert.Equal(t, config.DefaultMaxAttempts, cfg.Mail.MaxAttempts)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		o := Options{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml"), Lookup: envMap(nil)}
		_, err := o.LoadConfig()
		assert.Error(t, err)
	})

	t.Run("invalid provider", func(t *testing.T) {
		o := Options{Lookup: envMap(map[string]string{"MAIL_PROVIDER": "pigeon"})}
		_, err := o.LoadConfig()
		assert.ErrorContains(t, err, "pigeon")
	})

	t.Run("invalid number", func(t *testing.T) {
		o := Options{Lookup: envMap(map[string]string{"MAIL_MAX_ATTEMPTS": "many"})}
		_, err := o.LoadConfig()
		assert.ErrorContains(t, err, "MAIL_MAX_ATTEMPTS")
	})
}

func TestLoadConfig_EnvFile(t *testing.T) {
	// register cleanup for the variable the env file sets
	t.Setenv("BRAND_NAME", "")
	require.NoError(t, os.Unsetenv("BRAND_NAME"))

	path := filepath.Join(t.TempDir(), "relay.env")
	require.NoError(t, os.WriteFile(path, []byte("BRAND_NAME=Dotenv Brand\n"), 0o600))

	o := Options{EnvFile: path}
	cfg, err := o.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Dotenv Brand", cfg.Branding.Name)
}

func TestLoadConfig_EnvFileMissing(t *testing.T) {
	t.Run("explicit file must exist", func(t *testing.T) {
		o := Options{EnvFile: filepath.Join(t.TempDir(), "absent.env"), Lookup: envMap(nil)}
		_, err := o.LoadConfig()
		assert.ErrorContains(t, err, "absent.env")
	})

	t.Run("default file is optional", func(t *testing.T) {
		wd, wdErr := os.Getwd()
		require.NoError(t, wdErr)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })
		o := Options{EnvFile: defaultEnvFile, Lookup: envMap(nil)}
		_, err := o.LoadConfig()
		assert.NoError(t, err)
	})
}
