/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package apiresponses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Acknowledgement is the body of every relay response.
// Error carries the underlying failure text and is omitted on success.
type Acknowledgement struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// RespondOK sends a 200 OK acknowledgement.
func RespondOK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Acknowledgement{Message: message})
}

// RespondBadRequest sends a 400 Bad Request acknowledgement.
// Use this when the caller must resubmit a corrected payload.
func RespondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Acknowledgement{Message: message})
}

// RespondBadRequestWithError sends a 400 Bad Request that also carries the
// decoder or validation error text.
func RespondBadRequestWithError(c *gin.Context, message string, err error) {
	ack := Acknowledgement{Message: message}
	if err != nil {
		ack.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, ack)
}

// RespondInternalError sends a 500 Internal Server Error acknowledgement.
// Unlike a sanitized response, the underlying error text is passed through
// to the caller. The error is logged when log is non-nil.
func RespondInternalError(c *gin.Context, message string, err error, log *zap.SugaredLogger) {
	ack := Acknowledgement{Message: message}
	if err != nil {
		ack.Error = err.Error()
	}
	if log != nil {
		log.Errorw(message, "error", err)
	}
	c.JSON(http.StatusInternalServerError, ack)
}

// RespondNotFound sends a 404 Not Found acknowledgement.
func RespondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Acknowledgement{Message: "Not found."})
}
