// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the relay configuration from an optional YAML file and
// the process environment, fills defaults, and reports missing mail credentials
// as a ConfigurationError.
package config
