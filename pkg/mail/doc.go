// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

// Package mail delivers contact-form notifications through a mail provider
// (SMTP or the Resend HTTP API) with bounded retries, a per-attempt timeout
// and exponential backoff, sends the user and admin messages as independent
// sequences over one session, and optionally runs them on a background
// dispatcher.
package mail
