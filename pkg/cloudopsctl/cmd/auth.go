package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/auth"
	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/output"
)

const defaultLoginTimeout = 5 * time.Minute

func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Log in to the CloudOps console and manage the stored session",
	}
	cmd.AddCommand(
		newLoginCommand(),
		newCallbackCommand(),
		newStatusCommand(),
		newLogoutCommand(),
		newTokenCommand(),
	)
	return cmd
}

func newLoginCommand() *cobra.Command {
	var noWait, noBrowser bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start the browser login",
		Long: `Start an authorization code login with PKCE against the hosted login page.

With a loopback redirect URI (for example http://localhost:8400/callback) the
command waits for the redirect and finishes the login itself. Otherwise, or with
--no-wait, copy the redirected URL and pass it to "cloudopsctl auth callback".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg, err := rt.AuthConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			out := rt.Writer()
			flow, err := rt.Flow(auth.BrowserNavigator{Out: out, NoBrowser: noBrowser})
			if err != nil {
				return err
			}

			if noWait || !auth.IsLoopbackRedirect(cfg.RedirectURI) {
				if err := flow.BeginLogin(cmd.Context(), cfg); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, "After signing in, run: cloudopsctl auth callback '<redirected-url>'")
				return nil
			}

			listener, err := auth.ListenForCallback(cfg.RedirectURI)
			if err != nil {
				return err
			}
			defer func() { _ = listener.Close() }()
			rt.Logger().Debugw("Waiting for login callback", "address", listener.Addr())

			if err := flow.BeginLogin(cmd.Context(), cfg); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			var tokens *auth.TokenSet
			err = listener.Wait(ctx, func(ctx context.Context, query url.Values) error {
				var completeErr error
				tokens, completeErr = flow.CompleteLogin(ctx, query, cfg)
				return completeErr
			})
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("timed out waiting for login after %s", timeout)
				}
				return err
			}
			printLoggedIn(out, tokens)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Do not wait for the redirect; finish with 'auth callback'")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Only print the login URL")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultLoginTimeout, "How long to wait for the redirect")
	return cmd
}

func newCallbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "callback <redirected-url-or-query>",
		Short: "Finish a login from the URL the browser was redirected to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg, err := rt.AuthConfig()
			if err != nil {
				return err
			}
			query, err := parseCallbackArg(args[0])
			if err != nil {
				return err
			}
			flow, err := rt.Flow(auth.BrowserNavigator{Out: rt.Writer()})
			if err != nil {
				return err
			}
			tokens, err := flow.CompleteLogin(cmd.Context(), query, cfg)
			if err != nil {
				return err
			}
			printLoggedIn(rt.Writer(), tokens)
			return nil
		},
	}
}

// parseCallbackArg accepts a full redirect URL, a "?code=..." query or a bare query.
func parseCallbackArg(arg string) (url.Values, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, errors.New("callback url is empty")
	}
	raw := arg
	if strings.Contains(arg, "://") {
		u, err := url.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid callback url: %w", err)
		}
		raw = u.RawQuery
	} else if i := strings.Index(arg, "?"); i >= 0 {
		raw = arg[i+1:]
	}
	query, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid callback query: %w", err)
	}
	return query, nil
}

func printLoggedIn(w io.Writer, tokens *auth.TokenSet) {
	name := ""
	if tokens != nil {
		if id, err := tokens.Identity(); err == nil {
			name = id.Name()
		}
	}
	if name == "" {
		_, _ = fmt.Fprintln(w, "Logged in")
		return
	}
	_, _ = fmt.Fprintf(w, "Logged in as %s\n", name)
}

func newStatusCommand() *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			store, err := rt.Credentials()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			status := output.AuthStatus{
				Profile:       rt.ResolveProfileName(),
				Authenticated: store.IsAuthenticated(ctx),
			}
			tokens, ok, err := store.Load(ctx)
			if err != nil {
				return err
			}
			if ok {
				if id, err := tokens.Identity(); err == nil {
					status.Email = id.Email
					status.Username = id.Username
					if !id.ExpiresAt.IsZero() {
						exp := id.ExpiresAt
						status.ExpiresAt = &exp
					}
				} else {
					rt.Logger().Debugw("Could not read ID token claims", "error", err)
				}
			}
			if verify {
				verified := false
				if ok {
					cfg, err := rt.AuthConfig()
					if err != nil {
						return err
					}
					flow, err := rt.Flow(auth.BrowserNavigator{Out: rt.Writer(), NoBrowser: true})
					if err != nil {
						return err
					}
					if _, err := flow.VerifyIDToken(ctx, cfg, tokens.IDToken); err != nil {
						rt.Logger().Warnw("ID token verification failed", "error", err)
					} else {
						verified = true
					}
				}
				status.Verified = &verified
			}

			if format == output.FormatTable {
				output.WriteAuthStatusTable(rt.Writer(), status)
				return nil
			}
			return output.WriteObject(rt.Writer(), format, status)
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "Verify the ID token signature, audience and expiry against the issuer")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session and sign out at the provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg, err := rt.AuthConfig()
			if err != nil {
				return err
			}
			out := rt.Writer()
			flow, err := rt.Flow(auth.BrowserNavigator{Out: out, NoBrowser: noBrowser})
			if err != nil {
				return err
			}
			if cfg.Validate() != nil {
				// nothing to navigate to from a terminal
				if err := flow.Store.Clear(cmd.Context()); err != nil {
					return err
				}
			} else if err := flow.Logout(cmd.Context(), cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, "Logged out")
			return nil
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Only print the provider logout URL")
	return cmd
}

func newTokenCommand() *cobra.Command {
	var idToken bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			store, err := rt.Credentials()
			if err != nil {
				return err
			}
			tokens, ok, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("not logged in, run 'cloudopsctl auth login'")
			}
			value := tokens.AccessToken
			if idToken {
				value = tokens.IDToken
			}
			_, _ = fmt.Fprintln(rt.Writer(), value)
			return nil
		},
	}
	cmd.Flags().BoolVar(&idToken, "id", false, "Print the ID token instead")
	return cmd
}
