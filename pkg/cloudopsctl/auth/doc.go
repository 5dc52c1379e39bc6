// Package auth implements the OAuth2 authorization code flow with PKCE against the
// Cognito hosted UI: verifier/challenge generation, the authorization redirect, the
// callback exchange, logout and a credential store over pluggable key/value storage.
package auth
