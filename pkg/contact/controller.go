// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package contact

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/intrinsic-spiders/contact-relay/pkg/apiresponses"
	"github.com/intrinsic-spiders/contact-relay/pkg/mail"
	"github.com/intrinsic-spiders/contact-relay/pkg/metrics"
	"github.com/intrinsic-spiders/contact-relay/pkg/system"
)

const (
	MessageInvalidBody   = "Invalid request body"
	MessageConfiguration = "Server configuration error. Please contact support."
	MessageReceived      = "Your message has been received! We'll get back to you soon."
)

// Submission results as counted in metrics.ContactSubmissions.
const (
	resultInvalid       = "invalid"
	resultMisconfigured = "misconfigured"
	resultError         = "error"
	resultQueued        = "queued"
	resultDelivered     = "delivered"
	resultPartial       = "partial"
	resultUndelivered   = "undelivered"
)

// Enqueuer accepts a pair for background delivery without blocking.
type Enqueuer interface {
	Enqueue(user, admin *mail.Message) (string, error)
}

type ControllerOptions struct {
	Composer *Composer
	Sender   mail.PairSender
	// Dispatcher is optional; without it pairs are delivered inline.
	Dispatcher Enqueuer
	// Credentials reports missing mail credentials before any work is done.
	Credentials func() error
	// ExposeErrors adds error detail to 500 responses.
	ExposeErrors bool
	Middleware   []gin.HandlerFunc
}

// Controller serves POST /api/contact.
type Controller struct {
	log          *zap.SugaredLogger
	composer     *Composer
	sender       mail.PairSender
	dispatcher   Enqueuer
	credentials  func() error
	exposeErrors bool
	middleware   []gin.HandlerFunc
}

func NewController(log *zap.SugaredLogger, opts ControllerOptions) *Controller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Controller{
		log:          log.Named("contact"),
		composer:     opts.Composer,
		sender:       opts.Sender,
		dispatcher:   opts.Dispatcher,
		credentials:  opts.Credentials,
		exposeErrors: opts.ExposeErrors,
		middleware:   opts.Middleware,
	}
}

func (*Controller) BasePath() string {
	return "contact"
}

func (cc *Controller) Handlers() []gin.HandlerFunc {
	return cc.middleware
}

func (cc *Controller) Register(rg *gin.RouterGroup) error {
	rg.POST("", cc.handleSubmit)
	return nil
}

func (cc *Controller) handleSubmit(c *gin.Context) {
	log := system.GetReqLogger(c, cc.log)

	var s Submission
	if err := c.ShouldBind(&s); err != nil && !errors.Is(err, io.EOF) {
		log.Infow("Rejected malformed contact submission", "error", err)
		metrics.ContactSubmissions.WithLabelValues(resultInvalid).Inc()
		apiresponses.RespondBadRequest(c, MessageInvalidBody)
		return
	}
	s.Normalize()

	if err := s.Validate(); err != nil {
		var verr *ValidationError
		msg := MessageNameEmailRequired
		if errors.As(err, &verr) {
			msg = verr.Message
		}
		log.Infow("Rejected invalid contact submission", "error", err)
		metrics.ContactSubmissions.WithLabelValues(resultInvalid).Inc()
		apiresponses.RespondBadRequest(c, msg)
		return
	}

	if cc.credentials != nil {
		if err := cc.credentials(); err != nil {
			metrics.ContactSubmissions.WithLabelValues(resultMisconfigured).Inc()
			apiresponses.RespondInternalError(c, MessageConfiguration, err, cc.exposeErrors, log)
			return
		}
	}

	user, admin, err := cc.composer.Compose(s)
	if err != nil {
		metrics.ContactSubmissions.WithLabelValues(resultError).Inc()
		apiresponses.RespondInternalError(c, apiresponses.MessageInternalError, err, cc.exposeErrors, log)
		return
	}

	log = log.With("to", mail.RedactAddress(s.Email), "hasBooking", s.HasBooking())
	if cc.dispatcher != nil {
		id, err := cc.dispatcher.Enqueue(user, admin)
		if err == nil {
			log.Infow("Contact submission queued for delivery", "jobID", id)
			metrics.ContactSubmissions.WithLabelValues(resultQueued).Inc()
			apiresponses.RespondSuccess(c, MessageReceived)
			return
		}
		log.Warnw("Could not queue contact submission, delivering inline", "error", err)
	}

	// delivery outlives a disconnecting client
	ctx := context.WithoutCancel(c.Request.Context())
	out := cc.sender.SendPair(ctx, user, admin)
	result := deliveryResult(out)
	metrics.ContactSubmissions.WithLabelValues(result).Inc()
	log.Infow("Contact submission processed",
		"result", result,
		"user", out.User.String(),
		"admin", out.Admin.String())

	// delivery failures are logged only; the submitter always gets a success
	apiresponses.RespondSuccess(c, MessageReceived)
}

func deliveryResult(out mail.PairOutcome) string {
	switch {
	case out.User.Sent() && out.Admin.Sent():
		return resultDelivered
	case out.User.Sent() || out.Admin.Sent():
		return resultPartial
	default:
		return resultUndelivered
	}
}
