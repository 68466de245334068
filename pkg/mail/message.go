// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"strings"
)

// Kind tags a message for logs, metrics and spans only.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

func (k Kind) label() string {
	if k == "" {
		return "other"
	}
	return string(k)
}

// Message is a fully formed outbound email. It is built once per submission
// and never modified while a delivery sequence runs.
type Message struct {
	Kind     Kind
	From     string
	FromName string
	To       string
	ReplyTo  string
	Subject  string
	// Body is HTML.
	Body string
}

// senderDomain returns the domain of From, used for generated Message-IDs.
func (m *Message) senderDomain() string {
	if i := strings.LastIndexByte(m.From, '@'); i >= 0 && i < len(m.From)-1 {
		return m.From[i+1:]
	}
	return "localhost"
}

// HeaderSafe collapses whitespace, including CR and LF, so that user input
// can be placed in a header without starting a new one.
func HeaderSafe(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RedactAddress keeps the first character of the local part and the domain so
// logs can correlate deliveries without recording full addresses.
func RedactAddress(addr string) string {
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}
