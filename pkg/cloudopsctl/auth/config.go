/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2"
)

// PlaceholderMarker marks configuration values that were never filled in.
const PlaceholderMarker = "PASTE_"

// DefaultScopes are requested on every authorization redirect.
var DefaultScopes = []string{"openid", "email", "profile"}

// Config describes the hosted identity provider and this client's registration.
type Config struct {
	CognitoDomain string `json:"cognitoDomain" validate:"required,noplaceholder"`
	ClientID      string `json:"clientId" validate:"required,noplaceholder"`
	RedirectURI   string `json:"redirectUri" validate:"required,noplaceholder"`
	APIBaseURL    string `json:"apiBaseUrl,omitempty"`

	// Issuer is only needed for ID token verification.
	Issuer          string `json:"issuer,omitempty"`
	CAFile          string `json:"-"`
	InsecureSkipTLS bool   `json:"-"`
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("noplaceholder", func(fl validator.FieldLevel) bool {
		return !strings.Contains(fl.Field().String(), PlaceholderMarker)
	})
	return v
}

// Validate returns a *ConfigurationError naming every missing or placeholder field.
func (c Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fe.Field())
	}
	return &ConfigurationError{Missing: missing}
}

func (c Config) baseURL() string {
	return strings.TrimRight(c.CognitoDomain, "/")
}

func (c Config) AuthorizeEndpoint() string {
	return c.baseURL() + "/oauth2/authorize"
}

func (c Config) TokenEndpoint() string {
	return c.baseURL() + "/oauth2/token"
}

func (c Config) LogoutEndpoint() string {
	return c.baseURL() + "/logout"
}

// LogoutRedirectURI is the application root derived from the redirect URI by
// replacing a trailing /callback with /.
func (c Config) LogoutRedirectURI() string {
	if strings.HasSuffix(c.RedirectURI, "/callback") {
		return strings.TrimSuffix(c.RedirectURI, "/callback") + "/"
	}
	return c.RedirectURI
}

func (c Config) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:    c.ClientID,
		RedirectURL: c.RedirectURI,
		Scopes:      DefaultScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthorizeEndpoint(),
			TokenURL:  c.TokenEndpoint(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
