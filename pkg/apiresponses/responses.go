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
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/auth"
)

// APIError represents a standardized error response.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

const (
	CodeConfiguration   = "CONFIGURATION_ERROR"
	CodeAuthorization   = "AUTHORIZATION_ERROR"
	CodeMissingCode     = "MISSING_CODE"
	CodeMissingVerifier = "MISSING_VERIFIER"
	CodeTokenExchange   = "TOKEN_EXCHANGE_FAILED"
	CodeInternal        = "INTERNAL_ERROR"
)

// ClassifyAuthError maps a login flow error to its HTTP status and error code.
// Client-side problems are 400, a rejected or failed exchange with the identity
// provider is 502, anything else is 500.
func ClassifyAuthError(err error) (int, string) {
	var cfgErr *auth.ConfigurationError
	var authzErr *auth.AuthorizationError
	var exchErr *auth.TokenExchangeError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest, CodeConfiguration
	case errors.As(err, &authzErr):
		return http.StatusBadRequest, CodeAuthorization
	case errors.Is(err, auth.ErrMissingCode):
		return http.StatusBadRequest, CodeMissingCode
	case errors.Is(err, auth.ErrMissingVerifier):
		return http.StatusBadRequest, CodeMissingVerifier
	case errors.As(err, &exchErr):
		return http.StatusBadGateway, CodeTokenExchange
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// RespondAuthError sends the classified status with the error message.
// Internal errors are logged and sanitized.
func RespondAuthError(c *gin.Context, err error, log *zap.SugaredLogger) {
	status, code := ClassifyAuthError(err)
	if status == http.StatusInternalServerError {
		RespondInternalError(c, "complete login", err, log)
		return
	}
	if log != nil {
		log.Warnw("Login flow failed", "code", code, "error", err)
	}
	c.JSON(status, APIError{Error: err.Error(), Code: code})
}

// RespondNotFound sends a 404 Not Found response with a standardized message.
func RespondNotFound(c *gin.Context, resourceType, resourceName string) {
	c.JSON(http.StatusNotFound, APIError{
		Error: fmt.Sprintf("%s not found: %s", resourceType, resourceName),
		Code:  "NOT_FOUND",
	})
}

// RespondInternalError logs err with full details but returns a sanitized message.
func RespondInternalError(c *gin.Context, operation string, err error, log *zap.SugaredLogger) {
	if log != nil {
		log.Errorw(fmt.Sprintf("Failed to %s", operation), "error", err)
	}
	c.JSON(http.StatusInternalServerError, APIError{
		Error: fmt.Sprintf("failed to %s", operation),
		Code:  CodeInternal,
	})
}

// RespondTooManyRequests sends a 429 and asks the client to back off.
func RespondTooManyRequests(c *gin.Context) {
	c.Header("Retry-After", "1")
	c.JSON(http.StatusTooManyRequests, APIError{
		Error: "rate limit exceeded, please try again later",
		Code:  "RATE_LIMITED",
	})
}

// RespondOK sends a 200 OK response with the given data.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
