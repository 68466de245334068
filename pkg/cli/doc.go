// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

// Package cli defines the contact-relay command tree: serve runs the HTTP
// relay, verify and send-test check mail provider settings, and version prints
// build metadata. Flags fall back to environment variables.
package cli
