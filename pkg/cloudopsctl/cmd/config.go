package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/config"
	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/output"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cloudopsctl configuration",
	}

	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigViewCommand(),
		newConfigProfilesCommand(),
		newConfigUseProfileCommand(),
		newConfigSetProfileCommand(),
	)

	return cmd
}

type profileFlags struct {
	cognitoDomain string
	clientID      string
	redirectURI   string
	apiBaseURL    string
	issuer        string
	caFile        string
	insecure      bool
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.cognitoDomain, "cognito-domain", "", "Hosted login base URL, for example https://auth.example.com")
	cmd.Flags().StringVar(&f.clientID, "client-id", "", "App client ID")
	cmd.Flags().StringVar(&f.redirectURI, "redirect-uri", "", "Redirect URI registered for the app client")
	cmd.Flags().StringVar(&f.apiBaseURL, "api-base-url", "", "Dashboard API base URL")
	cmd.Flags().StringVar(&f.issuer, "issuer", "", "OIDC issuer URL used by 'auth status --verify'")
	cmd.Flags().StringVar(&f.caFile, "ca-file", "", "CA bundle for the identity provider")
	cmd.Flags().BoolVar(&f.insecure, "insecure-skip-tls-verify", false, "Skip TLS verification")
}

// apply copies the flags the user actually set onto p.
func (f *profileFlags) apply(cmd *cobra.Command, p config.Profile) config.Profile {
	changed := cmd.Flags().Changed
	if changed("cognito-domain") {
		p.CognitoDomain = f.cognitoDomain
	}
	if changed("client-id") {
		p.ClientID = f.clientID
	}
	if changed("redirect-uri") {
		p.RedirectURI = f.redirectURI
	}
	if changed("api-base-url") {
		p.APIBaseURL = f.apiBaseURL
	}
	if changed("issuer") {
		p.Issuer = f.issuer
	}
	if changed("ca-file") {
		p.CAFile = f.caFile
	}
	if changed("insecure-skip-tls-verify") {
		p.InsecureSkipTLS = f.insecure
	}
	return p
}

func newConfigInitCommand() *cobra.Command {
	var (
		profileName string
		force       bool
		flags       profileFlags
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a cloudopsctl config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			path := rt.configPathValue()
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config already exists: %s", path)
				}
			}
			if profileName == "" {
				profileName = "default"
			}
			cfg := config.DefaultConfig()
			cfg.CurrentProfile = profileName
			cfg.Profiles = append(cfg.Profiles, flags.apply(cmd, config.Profile{Name: profileName}))
			if err := config.Save(path, &cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Initialized config at %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&profileName, "profile-name", "default", "Profile name")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")
	flags.register(cmd)
	return cmd
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			format := output.FormatYAML
			if rt.outputFormat == string(output.FormatJSON) {
				format = output.FormatJSON
			}
			return output.WriteObject(rt.Writer(), format, rt.cfg)
		},
	}
}

func newConfigProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-profiles",
		Short: "List configured profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			current := rt.cfg.CurrentProfileOrDefault()
			for _, p := range rt.cfg.Profiles {
				marker := " "
				if p.Name == current {
					marker = "*"
				}
				_, _ = fmt.Fprintf(rt.Writer(), "%s %s\t%s\n", marker, p.Name, p.CognitoDomain)
			}
			return nil
		},
	}
}

func newConfigUseProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "use-profile NAME",
		Aliases: []string{"use"},
		Short:   "Set the default profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := args[0]
			if _, err := rt.cfg.FindProfile(name); err != nil {
				return err
			}
			rt.cfg.CurrentProfile = name
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "%s\n", name)
			return nil
		},
	}
}

func newConfigSetProfileCommand() *cobra.Command {
	var flags profileFlags
	cmd := &cobra.Command{
		Use:   "set-profile NAME",
		Short: "Create a profile or update the given fields of an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := args[0]
			p := config.Profile{Name: name}
			if existing, err := rt.cfg.FindProfile(name); err == nil {
				p = *existing
			}
			rt.cfg.UpsertProfile(flags.apply(cmd, p))
			if rt.cfg.CurrentProfile == "" {
				rt.cfg.CurrentProfile = name
			}
			if err := rt.cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Profile %s saved\n", name)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
