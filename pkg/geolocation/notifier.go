// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package geolocation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/telekom/geomail/pkg/config"
	"github.com/telekom/geomail/pkg/mail"
)

const (
	subjectPrefix = "Geolocation Update from Website - "
	// subjectTimeLayout mirrors the en-US locale format, e.g. "1/2/2006, 3:04:05 PM".
	subjectTimeLayout = "1/2/2006, 3:04:05 PM"
)

// DeliveryError wraps a transport failure. Its message is the transport's own.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Notifier validates events and sends one notification email per event.
type Notifier struct {
	sender    mail.Sender
	from      string
	recipient string
	appName   string
	now       func() time.Time
	log       *zap.SugaredLogger
}

func NewNotifier(sender mail.Sender, cfg config.Mail, log *zap.SugaredLogger) *Notifier {
	return &Notifier{
		sender:    sender,
		from:      cfg.SenderAddress,
		recipient: cfg.Recipient,
		appName:   cfg.SenderName,
		now:       time.Now,
		log:       log.Named("notifier"),
	}
}

// WithClock replaces the clock used for the subject line.
func (n *Notifier) WithClock(now func() time.Time) *Notifier {
	n.now = now
	return n
}

// BuildEnvelope assembles the notification for ev. The subject carries the
// server time at build time, not the client timestamp.
func (n *Notifier) BuildEnvelope(ev Event) (mail.Envelope, error) {
	body, err := mail.RenderGeolocation(mail.GeolocationMailParams{
		Latitude:  ev.LatitudeText(),
		Longitude: ev.LongitudeText(),
		Timestamp: ev.TimestampText(),
		MapURL:    ev.MapURL(),
		AppName:   n.appName,
	})
	if err != nil {
		return mail.Envelope{}, fmt.Errorf("rendering geolocation mail: %w", err)
	}
	return mail.Envelope{
		From:     n.from,
		To:       n.recipient,
		Subject:  subjectPrefix + n.now().Format(subjectTimeLayout),
		HTMLBody: body,
	}, nil
}

// Notify validates ev and performs exactly one send attempt, waiting for it
// to finish. Validation failures return ErrMissingCoordinates before any
// send; transport failures return a *DeliveryError.
func (n *Notifier) Notify(ctx context.Context, ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	env, err := n.BuildEnvelope(ev)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, env); err != nil {
		return &DeliveryError{Err: err}
	}
	return nil
}

// Recipient returns the fixed notification address.
func (n *Notifier) Recipient() string {
	return n.recipient
}
