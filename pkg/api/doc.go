// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

// Package api implements the relay's gin HTTP server: middleware stack (zap
// request logging, panic recovery, request IDs, tracing, CORS), health,
// metrics and version endpoints, and registration of API controllers under
// /api.
package api
