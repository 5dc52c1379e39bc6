// Package cmd implements the cloudopsctl command tree: login and session
// management against the hosted identity provider, the dashboard views, config
// management and the dashboard server.
package cmd
