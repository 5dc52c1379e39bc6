package cmd

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/auth"
	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/config"
	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/output"
	"github.com/cloudops-dev/cloudops/pkg/storage"
	"github.com/cloudops-dev/cloudops/pkg/system"
)

type Config struct {
	ConfigPath   string
	TokenPath    string
	OutputWriter io.Writer

	// Storage replaces the backend selected by --token-storage.
	Storage auth.Storage
	// Navigator replaces the browser navigator.
	Navigator auth.Navigator
	// HTTPClient is used for the token exchange and ID token verification.
	HTTPClient *http.Client
}

type runtimeState struct {
	configPath           string
	tokenPath            string
	cfg                  *config.Config
	profileOverride      string
	outputFormat         string
	tokenStorageOverride string
	verbose              bool
	writer               io.Writer
	log                  *zap.Logger

	storage    auth.Storage
	navigator  auth.Navigator
	httpClient *http.Client
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		TokenPath:    config.DefaultTokenPath(),
		OutputWriter: os.Stdout,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{
		configPath: cfg.ConfigPath,
		tokenPath:  cfg.TokenPath,
		writer:     cfg.OutputWriter,
		storage:    cfg.Storage,
		navigator:  cfg.Navigator,
		httpClient: cfg.HTTPClient,
	}

	root := &cobra.Command{
		Use:           "cloudopsctl",
		Short:         "CloudOps console CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if rt.tokenPath == "" {
				rt.tokenPath = config.DefaultTokenPath()
			}
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			if rt.profileOverride == "" {
				rt.profileOverride = os.Getenv("CLOUDOPS_PROFILE")
			}
			if rt.outputFormat == "" {
				rt.outputFormat = os.Getenv("CLOUDOPS_OUTPUT")
			}
			if rt.tokenStorageOverride == "" {
				rt.tokenStorageOverride = os.Getenv("CLOUDOPS_TOKEN_STORAGE")
			}
			if !rt.verbose {
				rt.verbose = strings.EqualFold(os.Getenv("CLOUDOPS_VERBOSE"), "true")
			}
			log, err := newCLILogger(rt.verbose)
			if err != nil {
				return err
			}
			rt.log = log

			if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
				return nil
			}
			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			// A missing config file is fine: CLOUDOPS_* variables can carry the profile.
			cfg, err := config.LoadOrDefault(rt.configPath)
			if err != nil {
				return err
			}
			rt.cfg = cfg
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if rt.log != nil {
				_ = rt.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().StringVarP(&rt.profileOverride, "profile", "p", "", "Profile name override")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: table, json, yaml")
	root.PersistentFlags().StringVar(&rt.tokenStorageOverride, "token-storage", "", "Token storage backend: file, keychain or memory")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewAuthCommand(),
		NewDashboardCommand(),
		NewConfigCommand(),
		NewServeCommand(),
		NewCompletionCommand(),
		NewVersionCommand(),
	)

	return root
}

// newCLILogger logs to stderr. Without verbose only warnings and errors show.
func newCLILogger(verbose bool) (*zap.Logger, error) {
	log, err := system.NewLogger(verbose)
	if err != nil {
		return nil, err
	}
	if !verbose {
		log = log.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
	}
	return log, nil
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) Logger() *zap.SugaredLogger {
	if rt.log == nil {
		return zap.NewNop().Sugar()
	}
	return rt.log.Sugar()
}

func (rt *runtimeState) ResolveProfileName() string {
	if rt.profileOverride != "" {
		return rt.profileOverride
	}
	if rt.cfg != nil {
		return rt.cfg.CurrentProfileOrDefault()
	}
	return ""
}

// ResolveProfile returns the selected profile with environment overrides applied.
func (rt *runtimeState) ResolveProfile() (config.Profile, error) {
	if rt.cfg == nil {
		return config.Profile{}, errors.New("config not loaded")
	}
	p, err := rt.cfg.ResolveProfile(rt.profileOverride)
	if err != nil {
		return config.Profile{}, err
	}
	overrides, err := config.ParseOverrides()
	if err != nil {
		return config.Profile{}, err
	}
	return overrides.Apply(p), nil
}

func (rt *runtimeState) AuthConfig() (auth.Config, error) {
	p, err := rt.ResolveProfile()
	if err != nil {
		return auth.Config{}, err
	}
	return p.AuthConfig(), nil
}

func (rt *runtimeState) OutputFormat() (output.Format, error) {
	format := rt.outputFormat
	if format == "" && rt.cfg != nil {
		format = rt.cfg.Settings.OutputFormat
	}
	return output.ParseFormat(format)
}

func (rt *runtimeState) TokenStorage() string {
	if rt.tokenStorageOverride != "" {
		return rt.tokenStorageOverride
	}
	if rt.cfg != nil && rt.cfg.Settings.TokenStorage != "" {
		return rt.cfg.Settings.TokenStorage
	}
	return storage.ModeFile
}

func (rt *runtimeState) Storage() (auth.Storage, error) {
	if rt.storage != nil {
		return rt.storage, nil
	}
	s, err := storage.New(rt.TokenStorage(), rt.tokenPath)
	if err != nil {
		return nil, err
	}
	rt.storage = s
	return s, nil
}

func (rt *runtimeState) Credentials() (*auth.CredentialStore, error) {
	s, err := rt.Storage()
	if err != nil {
		return nil, err
	}
	return auth.NewCredentialStore(s), nil
}

// Flow builds the login flow. nav is used unless a navigator was injected.
func (rt *runtimeState) Flow(nav auth.Navigator) (*auth.Flow, error) {
	store, err := rt.Credentials()
	if err != nil {
		return nil, err
	}
	if rt.navigator != nil {
		nav = rt.navigator
	}
	f := auth.NewFlow(store, nav, rt.Logger())
	f.HTTPClient = rt.httpClient
	if rt.cfg != nil {
		f.VerifierLength = rt.cfg.Settings.VerifierLength
	}
	return f, nil
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) EnsureConfigLoaded() error {
	if rt.cfg != nil {
		return nil
	}
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	return nil
}

func (rt *runtimeState) configPathValue() string {
	if rt.configPath == "" {
		return config.DefaultConfigPath()
	}
	return rt.configPath
}
