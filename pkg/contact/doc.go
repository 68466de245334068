// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

// Package contact implements the contact-form endpoint: it validates a
// submission, composes the user confirmation and the admin notification, and
// hands both to the mail layer.
package contact
