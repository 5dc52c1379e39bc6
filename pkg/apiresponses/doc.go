// Package apiresponses provides the JSON error and success envelopes of the
// dashboard server and maps login flow failures onto HTTP status codes.
package apiresponses
