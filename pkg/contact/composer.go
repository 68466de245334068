// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package contact

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/intrinsic-spiders/contact-relay/pkg/config"
	"github.com/intrinsic-spiders/contact-relay/pkg/mail"
)

const (
	phoneNotProvided  = "Not provided"
	noMessageProvided = "No message provided"
	bookingDateLayout = "Monday, January 2, 2006"
)

var (
	//go:embed templates/user_confirmation.html
	userConfirmationRaw string
	//go:embed templates/admin_notification.html
	adminNotificationRaw string

	userConfirmationTemplate  = template.Must(template.New("userConfirmation").Funcs(funcMap()).Parse(userConfirmationRaw))
	adminNotificationTemplate = template.Must(template.New("adminNotification").Funcs(funcMap()).Parse(adminNotificationRaw))
)

func funcMap() template.FuncMap {
	fm := sprig.HtmlFuncMap()
	fm["nl2br"] = nl2br
	return fm
}

// nl2br escapes s and turns line breaks into <br>.
func nl2br(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>")) //nolint:gosec // input is escaped above
}

type templateData struct {
	BrandName       string
	ResponseTime    string
	ContactChannels []config.ContactChannel
	Name            string
	Email           string
	Phone           string
	Message         string
	HasMessage      bool
	Booking         string
}

// Composer turns a submission into the two outbound messages.
type Composer struct {
	branding config.Branding
	sender   string
	admin    string
}

func NewComposer(branding config.Branding, senderAddress, adminAddress string) *Composer {
	if adminAddress == "" {
		adminAddress = senderAddress
	}
	return &Composer{branding: branding, sender: senderAddress, admin: adminAddress}
}

// Compose builds the user confirmation and the admin notification.
func (c *Composer) Compose(s Submission) (user, admin *mail.Message, err error) {
	data := c.data(s)
	user, err = c.userConfirmation(data)
	if err != nil {
		return nil, nil, err
	}
	admin, err = c.adminNotification(data)
	if err != nil {
		return nil, nil, err
	}
	return user, admin, nil
}

func (c *Composer) data(s Submission) templateData {
	d := templateData{
		BrandName:       c.branding.Name,
		ResponseTime:    c.branding.ResponseTime,
		ContactChannels: c.branding.ContactChannels,
		Name:            s.Name,
		Email:           s.Email,
		Phone:           s.Phone,
		Message:         s.Message,
		HasMessage:      s.Message != "",
	}
	if d.Phone == "" {
		d.Phone = phoneNotProvided
	}
	if d.Message == "" {
		d.Message = noMessageProvided
	}
	if s.HasBooking() {
		d.Booking = fmt.Sprintf("Date: %s\nTime: %s", FormatBookingDate(s.SelectedDate), s.SelectedTimeSlot)
	}
	return d
}

func (c *Composer) userConfirmation(d templateData) (*mail.Message, error) {
	body, err := render(userConfirmationTemplate, d)
	if err != nil {
		return nil, fmt.Errorf("rendering user confirmation: %w", err)
	}
	return &mail.Message{
		Kind:     mail.KindUser,
		From:     c.sender,
		FromName: mail.HeaderSafe(c.branding.Name),
		To:       mail.HeaderSafe(d.Email),
		ReplyTo:  c.admin,
		Subject:  mail.HeaderSafe("Thank You for Contacting " + c.branding.Name),
		Body:     body,
	}, nil
}

func (c *Composer) adminNotification(d templateData) (*mail.Message, error) {
	body, err := render(adminNotificationTemplate, d)
	if err != nil {
		return nil, fmt.Errorf("rendering admin notification: %w", err)
	}
	return &mail.Message{
		Kind:     mail.KindAdmin,
		From:     c.sender,
		FromName: mail.HeaderSafe(c.branding.AdminSenderName),
		To:       c.admin,
		ReplyTo:  mail.HeaderSafe(d.Email),
		Subject:  mail.HeaderSafe("New Contact Form Submission from " + d.Name),
		Body:     body,
	}, nil
}

func render(t *template.Template, data any) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// FormatBookingDate renders the YYYY-MM-DD prefix of raw as a long English
// date. Anything after the date (time, zone) is ignored; unparseable input is
// returned unchanged.
func FormatBookingDate(raw string) string {
	if len(raw) < len("2006-01-02") {
		return raw
	}
	d, err := time.Parse("2006-01-02", raw[:len("2006-01-02")])
	if err != nil {
		return raw
	}
	return d.Format(bookingDateLayout)
}
