package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/auth"
)

const (
	VersionV1 = "v1"
)

type Config struct {
	Version        string    `yaml:"version"`
	CurrentProfile string    `yaml:"current-profile,omitempty"`
	Profiles       []Profile `yaml:"profiles,omitempty"`
	Settings       Settings  `yaml:"settings,omitempty"`
}

type Settings struct {
	OutputFormat   string `yaml:"output-format,omitempty"`
	TokenStorage   string `yaml:"token-storage,omitempty"`
	VerifierLength int    `yaml:"verifier-length,omitempty"`
}

// Profile is one Cognito app client registration plus the dashboard API it fronts.
type Profile struct {
	Name            string `yaml:"name"`
	CognitoDomain   string `yaml:"cognito-domain"`
	ClientID        string `yaml:"client-id"`
	RedirectURI     string `yaml:"redirect-uri"`
	APIBaseURL      string `yaml:"api-base-url,omitempty"`
	Issuer          string `yaml:"issuer,omitempty"`
	CAFile          string `yaml:"ca-file,omitempty"`
	InsecureSkipTLS bool   `yaml:"insecure-skip-tls-verify,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version: VersionV1,
		Settings: Settings{
			OutputFormat:   "table",
			TokenStorage:   "file",
			VerifierLength: auth.DefaultVerifierLength,
		},
	}
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	return &cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields DefaultConfig.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		def := DefaultConfig()
		return &def, nil
	}
	return nil, err
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

func (c *Config) FindProfile(name string) (*Profile, error) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile not found: %s", name)
}

func (c *Config) CurrentProfileOrDefault() string {
	if c.CurrentProfile != "" {
		return c.CurrentProfile
	}
	if len(c.Profiles) > 0 {
		return c.Profiles[0].Name
	}
	return ""
}

// UpsertProfile replaces the profile with the same name or appends p.
func (c *Config) UpsertProfile(p Profile) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			c.Profiles[i] = p
			return
		}
	}
	c.Profiles = append(c.Profiles, p)
}

// ResolveProfile picks the named profile, falling back to the current one.
// A config without profiles resolves to an empty profile so that environment
// overrides alone can drive the CLI.
func (c *Config) ResolveProfile(name string) (Profile, error) {
	if name == "" {
		name = c.CurrentProfileOrDefault()
	}
	if name == "" {
		return Profile{}, nil
	}
	p, err := c.FindProfile(name)
	if err != nil {
		return Profile{}, err
	}
	return *p, nil
}

func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("config version missing")
	}
	seen := map[string]bool{}
	for _, p := range c.Profiles {
		if strings.TrimSpace(p.Name) == "" {
			return errors.New("profile name cannot be empty")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate profile %s", p.Name)
		}
		seen[p.Name] = true
	}
	if c.CurrentProfile != "" && !seen[c.CurrentProfile] {
		return fmt.Errorf("current profile %s is not defined", c.CurrentProfile)
	}
	if c.Settings.VerifierLength < 0 {
		return errors.New("verifier-length cannot be negative")
	}
	return nil
}

// AuthConfig converts the profile into the value the login flow consumes.
func (p Profile) AuthConfig() auth.Config {
	return auth.Config{
		CognitoDomain:   p.CognitoDomain,
		ClientID:        p.ClientID,
		RedirectURI:     p.RedirectURI,
		APIBaseURL:      p.APIBaseURL,
		Issuer:          p.Issuer,
		CAFile:          p.CAFile,
		InsecureSkipTLS: p.InsecureSkipTLS,
	}
}
