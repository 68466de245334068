// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Submission metrics
	ContactSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_relay_submissions_total",
		Help: "Total number of contact form submissions grouped by handling result",
	}, []string{"result"})
	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_relay_rate_limited_total",
		Help: "Total number of requests rejected by the per-IP rate limiter",
	}, []string{"route"})

	// Mail delivery metrics. The kind label is "user" or "admin".
	MailAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_relay_mail_attempts_total",
		Help: "Total number of individual send attempts grouped by result (success, timeout, error)",
	}, []string{"provider", "kind", "result"})
	MailAttemptDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contact_relay_mail_attempt_duration_seconds",
		Help:    "Duration of individual send attempts",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
	}, []string{"provider", "kind"})
	MailRetryScheduled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_relay_mail_retry_scheduled_total",
		Help: "Total number of retries scheduled after a failed attempt",
	}, []string{"provider", "kind"})
	MailSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_relay_mail_sent_total",
		Help: "Total number of messages delivered",
	}, []string{"provider", "kind"})
	MailFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_relay_mail_failed_total",
		Help: "Total number of messages that exhausted every attempt",
	}, []string{"provider", "kind"})

	// Dispatcher metrics
	MailQueued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_relay_mail_queued_total",
		Help: "Total number of notification pairs handed to the background dispatcher",
	}, []string{"provider"})
	MailQueueDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_relay_mail_queue_dropped_total",
		Help: "Total number of notification pairs the dispatcher refused (full or stopping)",
	}, []string{"provider"})
	MailQueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "contact_relay_mail_queue_depth",
		Help: "Current number of notification pairs waiting in the dispatcher",
	}, []string{"provider"})
)

func init() {
	prometheus.MustRegister(ContactSubmissions)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(MailAttempts)
	prometheus.MustRegister(MailAttemptDuration)
	prometheus.MustRegister(MailRetryScheduled)
	prometheus.MustRegister(MailSent)
	prometheus.MustRegister(MailFailed)
	prometheus.MustRegister(MailQueued)
	prometheus.MustRegister(MailQueueDropped)
	prometheus.MustRegister(MailQueueDepth)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
