// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

// Package apiresponses provides the JSON envelope shared by every relay
// endpoint: {success, message, error?}.
package apiresponses
