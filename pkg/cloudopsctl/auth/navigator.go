package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// Navigator transfers the user agent to another URL. In a CLI this opens the
// browser; in the server it is an HTTP redirect.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

func (f NavigatorFunc) Navigate(ctx context.Context, target string) error {
	return f(ctx, target)
}

// BrowserNavigator prints the target URL and, unless NoBrowser is set, opens it
// in the system browser.
type BrowserNavigator struct {
	Out       io.Writer
	NoBrowser bool
}

func (n BrowserNavigator) Navigate(_ context.Context, target string) error {
	out := n.Out
	if out == nil {
		out = os.Stdout
	}
	_, _ = fmt.Fprintf(out, "Open the following URL in your browser:\n%s\n", target)
	if n.NoBrowser {
		return nil
	}
	// a browser that fails to start is not fatal, the URL was printed
	_ = openBrowser(target)
	return nil
}

var openBrowser = func(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if cmd == nil {
		return errors.New("no browser command available")
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Start()
}
