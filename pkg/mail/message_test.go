// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderSafe(t *testing.T) {
	assert.Equal(t, "Ana Lopez", HeaderSafe("Ana\r\nLopez"))
	assert.Equal(t, "Ana Bcc: evil@example.com", HeaderSafe("Ana\nBcc: evil@example.com"))
	assert.Equal(t, "Ana", HeaderSafe("  Ana \t"))
	assert.Equal(t, "", HeaderSafe(""))
}

func TestRedactAddress(t *testing.T) {
	tests := map[string]string{
		"ana@example.com": "a***@example.com",
		"x@y.io":          "x***@y.io",
		"@example.com":    "***",
		"not-an-address":  "***",
		"":                "***",
	}
	for in, want := range tests {
		assert.Equal(t, want, RedactAddress(in), in)
	}
}

func TestMessageSenderDomain(t *testing.T) {
	assert.Equal(t, "example.com", (&Message{From: "sender@example.com"}).senderDomain())
	assert.Equal(t, "localhost", (&Message{From: "sender@"}).senderDomain())
	assert.Equal(t, "localhost", (&Message{}).senderDomain())
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "user", KindUser.label())
	assert.Equal(t, "admin", KindAdmin.label())
	assert.Equal(t, "other", Kind("").label())
}
