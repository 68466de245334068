// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

// Package ratelimit provides per-IP token-bucket rate limiting middleware for
// gin, with automatic cleanup of idle client entries.
package ratelimit
