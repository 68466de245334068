// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics defines Prometheus metrics for the contact relay, covering
// form submissions, rate limiting, mail delivery attempts and the background
// dispatcher.
package metrics
