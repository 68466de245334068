// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/intrinsic-spiders/contact-relay/pkg/config"
)

const defaultEnvFile = ".env"

// Options holds the process-level flags shared by every command.
type Options struct {
	// ConfigPath points to an optional YAML file.
	ConfigPath string
	// EnvFile is loaded into the environment before configuration is read.
	// A missing default file is ignored; a missing explicit one is an error.
	EnvFile string
	Debug   bool

	// Lookup resolves environment variables; os.LookupEnv when nil.
	Lookup config.LookupFunc
}

// DefaultOptions seeds flag defaults from the environment.
func DefaultOptions() Options {
	return Options{
		ConfigPath: getEnvString("CONTACT_RELAY_CONFIG", ""),
		EnvFile:    getEnvString("CONTACT_RELAY_ENV_FILE", defaultEnvFile),
		Debug:      getEnvBool("DEBUG", false),
	}
}

func (o *Options) Print(log *zap.SugaredLogger) {
	log.Infow("CLI Configuration",
		"debug", o.Debug,
		"config_path", o.ConfigPath,
		"env_file", o.EnvFile,
	)
}

// LoadConfig applies the env file, the YAML file, environment overrides and
// defaults, in that order, and validates the result.
func (o *Options) LoadConfig() (config.Config, error) {
	if err := o.loadEnvFile(); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return cfg, err
	}
	lookup := o.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadEnvFile never overrides variables already present in the environment.
func (o *Options) loadEnvFile() error {
	if o.EnvFile == "" {
		return nil
	}
	err := godotenv.Load(o.EnvFile)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && o.EnvFile == defaultEnvFile {
		return nil
	}
	return fmt.Errorf("loading env file %s: %w", o.EnvFile, err)
}

func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvBool returns the value of an environment variable as a bool, or the provided default if not set.
// Valid true values are "true", "1", "yes" (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}
