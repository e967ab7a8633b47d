// Package mail delivers notification emails over SMTP and renders the
// embedded HTML templates used for their bodies.
package mail
