// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package system

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ReqLoggerKey is the context key used to store request-scoped logger in gin context.
	ReqLoggerKey = "reqLogger"
	// RequestIDKey holds the request ID in the gin context.
	RequestIDKey = "requestID"
	// RequestIDHeader is echoed back on every response.
	RequestIDHeader = "X-Request-ID"
	// SessionIDKey holds the visitor session ID once the session middleware ran.
	SessionIDKey = "sessionID"
)

// GetReqLogger returns the request-scoped sugared logger from gin.Context if present,
// otherwise returns the fallback.
func GetReqLogger(c *gin.Context, fallback *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return fallback
	}
	if v, ok := c.Get(ReqLoggerKey); ok {
		if l, ok2 := v.(*zap.SugaredLogger); ok2 {
			return l
		}
	}
	return fallback
}

// RequestLogger attaches a request ID and a logger carrying it to every request.
// An incoming X-Request-ID header is reused when present.
func RequestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}
		c.Set(RequestIDKey, reqID)
		c.Header(RequestIDHeader, reqID)
		c.Set(ReqLoggerKey, log.With("requestID", reqID, "path", c.Request.URL.Path))
		c.Next()
	}
}

// EnrichReqLoggerWithSession annotates the request-scoped logger with the visitor
// session and, when known, the signed-in email.
func EnrichReqLoggerWithSession(c *gin.Context, reqLogger *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil || reqLogger == nil {
		return reqLogger
	}
	if v, ok := c.Get(SessionIDKey); ok {
		if sid, ok2 := v.(string); ok2 && sid != "" {
			// Only a prefix; the full ID is a bearer credential for the session.
			if len(sid) > 8 {
				sid = sid[:8]
			}
			reqLogger = reqLogger.With("session", sid)
		}
	}
	if v, ok := c.Get("email"); ok {
		if email, ok2 := v.(string); ok2 && email != "" {
			reqLogger = reqLogger.With("email", email)
		}
	}
	return reqLogger
}
