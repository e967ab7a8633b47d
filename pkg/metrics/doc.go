// Package metrics defines Prometheus metrics for the geolocation relay,
// covering inbound requests by outcome and outbound mail delivery.
package metrics
