package auth

import (
	"context"
	"net/url"
)

// Logout clears local credentials first and then navigates to the provider logout
// endpoint, or to RootURL when the config is incomplete. Local state is gone even
// if the navigation fails.
func (f *Flow) Logout(ctx context.Context, cfg Config) error {
	if err := f.Store.Clear(ctx); err != nil {
		return err
	}
	if cfg.Validate() != nil {
		f.Log.Debugw("Provider not configured, skipping remote logout")
		root := f.RootURL
		if root == "" {
			root = "/"
		}
		return f.Navigator.Navigate(ctx, root)
	}
	return f.Navigator.Navigate(ctx, LogoutURL(cfg))
}

// LogoutURL builds the provider logout request.
func LogoutURL(cfg Config) string {
	values := url.Values{}
	values.Set("client_id", cfg.ClientID)
	values.Set("logout_uri", cfg.LogoutRedirectURI())
	return cfg.LogoutEndpoint() + "?" + values.Encode()
}
