// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package contact

import (
	"fmt"
	"strings"
)

const MessageNameEmailRequired = "Name and email are required"

// Submission is one contact-form post. It is never stored.
type Submission struct {
	Name             string `json:"name" form:"name"`
	Email            string `json:"email" form:"email"`
	Phone            string `json:"phone" form:"phone"`
	Message          string `json:"message" form:"message"`
	SelectedDate     string `json:"selectedDate" form:"selectedDate"`
	SelectedTimeSlot string `json:"selectedTimeSlot" form:"selectedTimeSlot"`
}

// ValidationError reports a rejected field. Message is safe to return to the
// client as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Normalize trims surrounding whitespace from every field.
func (s *Submission) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Message = strings.TrimSpace(s.Message)
	s.SelectedDate = strings.TrimSpace(s.SelectedDate)
	s.SelectedTimeSlot = strings.TrimSpace(s.SelectedTimeSlot)
}

// Validate requires a name and an email. Both are otherwise freeform; header
// safety is applied when the messages are composed.
func (s Submission) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: MessageNameEmailRequired}
	}
	if s.Email == "" {
		return &ValidationError{Field: "email", Message: MessageNameEmailRequired}
	}
	return nil
}

// HasBooking reports whether both booking fields were supplied.
func (s Submission) HasBooking() bool {
	return s.SelectedDate != "" && s.SelectedTimeSlot != ""
}
