// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package geolocation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MapsBaseURL is the map service the notification links to.
const MapsBaseURL = "https://www.google.com/maps"

var (
	// ErrMissingCoordinates is returned when latitude or longitude is null or absent.
	ErrMissingCoordinates = errors.New("latitude and longitude are required")
	// ErrInvalidBody is returned when the request body is not a geolocation object.
	ErrInvalidBody = errors.New("invalid request body")
)

// Event is a single coordinate report as posted by a client. It is never stored.
//
// Coordinates keep the literal number text the client sent so the email shows
// exactly what was reported.
type Event struct {
	Latitude  *json.Number    `json:"latitude"`
	Longitude *json.Number    `json:"longitude"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

// Validate reports ErrMissingCoordinates when either coordinate is missing.
// The timestamp is optional.
func (e Event) Validate() error {
	if e.Latitude == nil || e.Longitude == nil {
		return ErrMissingCoordinates
	}
	return nil
}

func (e Event) LatitudeText() string {
	if e.Latitude == nil {
		return ""
	}
	return e.Latitude.String()
}

func (e Event) LongitudeText() string {
	if e.Longitude == nil {
		return ""
	}
	return e.Longitude.String()
}

// TimestampText renders the client timestamp: strings unquoted, other JSON
// values as compact JSON, null or absent as "".
func (e Event) TimestampText() string {
	raw := bytes.TrimSpace(e.Timestamp)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// MapURL links to the reported position, e.g. https://www.google.com/maps?q=37.7749,-122.4194.
func (e Event) MapURL() string {
	return fmt.Sprintf("%s?q=%s,%s", MapsBaseURL, e.LatitudeText(), e.LongitudeText())
}
