/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// IsLoopbackRedirect reports whether redirectURI points at this machine, so the
// CLI can receive the callback itself.
func IsLoopbackRedirect(redirectURI string) bool {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Scheme != "http" || u.Port() == "" {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// CallbackListener receives a single provider redirect on a loopback address.
type CallbackListener struct {
	listener net.Listener
	path     string
}

// ListenForCallback binds the host:port of a loopback redirect URI. Bind before
// BeginLogin so the redirect cannot arrive before anyone is listening.
func ListenForCallback(redirectURI string) (*CallbackListener, error) {
	if !IsLoopbackRedirect(redirectURI) {
		return nil, fmt.Errorf("redirect uri is not a loopback address: %s", redirectURI)
	}
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return &CallbackListener{listener: listener, path: path}, nil
}

// Addr is the bound listener address.
func (l *CallbackListener) Addr() string {
	return l.listener.Addr().String()
}

// Wait serves until the first request on the callback path, hands its query to
// complete and returns complete's error. The listener is closed on return.
func (l *CallbackListener) Wait(ctx context.Context, complete func(context.Context, url.Values) error) error {
	errCh := make(chan error, 1)
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != l.path {
				http.NotFound(w, r)
				return
			}
			if err := complete(ctx, r.URL.Query()); err != nil {
				http.Error(w, "Login failed: "+err.Error(), http.StatusBadRequest)
				report(errCh, err)
				return
			}
			_, _ = fmt.Fprintln(w, "Authentication complete. You can close this window.")
			report(errCh, nil)
		}),
	}
	go func() {
		if err := server.Serve(l.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			report(errCh, err)
		}
	}()
	defer func() {
		_ = server.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// report keeps only the first outcome; later requests must not block
func report(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// Close releases the listener without waiting.
func (l *CallbackListener) Close() error {
	return l.listener.Close()
}
