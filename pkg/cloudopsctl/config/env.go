package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Overrides are the environment variables that take precedence over the
// selected profile. Empty values leave the profile untouched.
type Overrides struct {
	CognitoDomain string `env:"CLOUDOPS_COGNITO_DOMAIN"`
	ClientID      string `env:"CLOUDOPS_CLIENT_ID"`
	RedirectURI   string `env:"CLOUDOPS_REDIRECT_URI"`
	APIBaseURL    string `env:"CLOUDOPS_API_BASE_URL"`
	Issuer        string `env:"CLOUDOPS_ISSUER"`
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env") into
// the process environment. Variables already set are kept and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func ParseOverrides() (Overrides, error) {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return Overrides{}, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

// Apply returns p with every non-empty override applied.
func (o Overrides) Apply(p Profile) Profile {
	if o.CognitoDomain != "" {
		p.CognitoDomain = o.CognitoDomain
	}
	if o.ClientID != "" {
		p.ClientID = o.ClientID
	}
	if o.RedirectURI != "" {
		p.RedirectURI = o.RedirectURI
	}
	if o.APIBaseURL != "" {
		p.APIBaseURL = o.APIBaseURL
	}
	if o.Issuer != "" {
		p.Issuer = o.Issuer
	}
	return p
}
