// Package api serves the CloudOps console over HTTP: the login, callback and
// logout entry points, the rendered dashboard routes and a small JSON API.
package api
