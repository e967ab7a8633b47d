// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package geolocation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/telekom/geomail/pkg/apiresponses"
	"github.com/telekom/geomail/pkg/metrics"
	"github.com/telekom/geomail/pkg/system"
)

const (
	// Route is the single endpoint served by the relay.
	Route = "/send-geolocation-email"

	MsgSent               = "Email sent successfully!"
	MsgCoordinatesMissing = "Latitude and longitude are required."
	MsgInvalidBody        = "Invalid request body."
	MsgSendFailed         = "Failed to send email."
)

// Controller exposes the Notifier over HTTP.
type Controller struct {
	notifier *Notifier
	log      *zap.SugaredLogger
}

func NewController(notifier *Notifier, log *zap.SugaredLogger) *Controller {
	return &Controller{
		notifier: notifier,
		log:      log.Named("geolocation"),
	}
}

func (gc *Controller) BasePath() string {
	return "/"
}

func (gc *Controller) Handlers() []gin.HandlerFunc {
	return nil
}

func (gc *Controller) Register(rg *gin.RouterGroup) error {
	rg.POST(Route, gc.handleSendGeolocationEmail)
	return nil
}

func (gc *Controller) handleSendGeolocationEmail(c *gin.Context) {
	reqLog := system.GetReqLogger(c, gc.log)

	var ev Event
	if err := bindEvent(c, &ev); err != nil {
		reqLog.Errorw("Malformed geolocation payload", "error", err)
		metrics.GeolocationRequests.WithLabelValues(metrics.OutcomeInvalid).Inc()
		apiresponses.RespondBadRequestWithError(c, MsgInvalidBody, fmt.Errorf("%w: %v", ErrInvalidBody, err))
		return
	}

	reqLog = reqLog.With(system.CoordinateFields(ev.LatitudeText(), ev.LongitudeText())...)

	err := gc.notifier.Notify(c.Request.Context(), ev)

	var deliveryErr *DeliveryError
	switch {
	case err == nil:
		reqLog.Infow("Email sent successfully", "recipient", gc.notifier.Recipient())
		metrics.GeolocationRequests.WithLabelValues(metrics.OutcomeSent).Inc()
		apiresponses.RespondOK(c, MsgSent)
	case errors.Is(err, ErrMissingCoordinates):
		reqLog.Errorw("Missing latitude or longitude in request body")
		metrics.GeolocationRequests.WithLabelValues(metrics.OutcomeInvalid).Inc()
		apiresponses.RespondBadRequest(c, MsgCoordinatesMissing)
	case errors.As(err, &deliveryErr):
		metrics.GeolocationRequests.WithLabelValues(metrics.OutcomeDeliveryFail).Inc()
		apiresponses.RespondInternalError(c, MsgSendFailed, deliveryErr.Err, reqLog)
	default:
		metrics.GeolocationRequests.WithLabelValues(metrics.OutcomeDeliveryFail).Inc()
		apiresponses.RespondInternalError(c, MsgSendFailed, err, reqLog)
	}
}

var errTrailingData = errors.New("unexpected data after top-level JSON value")

// bindEvent decodes the body through gin's JSON binding. An empty body is an
// empty payload and fails coordinate validation later; anything after the
// first JSON value is rejected.
func bindEvent(c *gin.Context, ev *Event) error {
	raw, err := c.GetRawData()
	if err != nil {
		return err
	}
	if err := binding.JSON.BindBody(raw, ev); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if !json.Valid(raw) {
		return errTrailingData
	}
	return nil
}
