// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

/*
Copyright 2026 Intrinsic Spiders.

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

const (
	MessageTooManyRequests = "Too many requests. Please try again later."
	MessageInternalError   = "Something went wrong. Please try again later."
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// RespondSuccess sends a 200 with success=true.
func RespondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// RespondBadRequest sends a 400 for client input problems.
func RespondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Message: message})
}

// RespondInternalError logs err and sends a 500 with message. The error text
// is only exposed when exposeDetail is set, which callers tie to
// non-production environments.
func RespondInternalError(c *gin.Context, message string, err error, exposeDetail bool, log *zap.SugaredLogger) {
	if message == "" {
		message = MessageInternalError
	}
	if log != nil && err != nil {
		log.Errorw(message, "error", err)
	}
	body := Envelope{Message: message}
	if exposeDetail && err != nil {
		body.Error = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

// RespondTooManyRequests sends a 429 and stops the handler chain.
func RespondTooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Envelope{Message: MessageTooManyRequests})
}
