// Package geolocation turns an inbound coordinate report into a single
// notification email and maps the outcome to an HTTP acknowledgement.
package geolocation
