package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values for GeolocationRequests.
const (
	OutcomeSent         = "sent"
	OutcomeInvalid      = "invalid"
	OutcomeDeliveryFail = "delivery_failed"
)

var (
	GeolocationRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geomail_geolocation_requests_total",
		Help: "Total number of geolocation requests grouped by outcome",
	}, []string{"outcome"})

	// Mail metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geomail_mail_send_success_total",
		Help: "Total number of successful mail sends",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geomail_mail_send_failure_total",
		Help: "Total number of failed mail sends",
	}, []string{"host"})
	MailSendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geomail_mail_send_duration_seconds",
		Help:    "Time spent dialing the SMTP server and delivering one message",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"host"})
)

func init() {
	prometheus.MustRegister(GeolocationRequests)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(MailSendDuration)

	// Zero-valued series so every outcome is exported before the first request.
	for _, o := range []string{OutcomeSent, OutcomeInvalid, OutcomeDeliveryFail} {
		GeolocationRequests.WithLabelValues(o)
	}
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
