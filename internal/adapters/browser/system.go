// Package browser opens authorization URLs in the user's default browser.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	pkgbrowser "github.com/pkg/browser"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

// System launches URLs through the platform opener (open, xdg-open, rundll32).
type System struct {
	logger *slog.Logger
	open   func(string) error
}

var _ ports.BrowserLauncher = (*System)(nil)

// NewSystem returns a launcher that silences the opener's stdout and stderr.
func NewSystem(logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
	return &System{logger: logger.With("component", "browser"), open: pkgbrowser.OpenURL}
}

// Open rejects anything but absolute http(s) URLs before handing them to the OS.
func (s *System) Open(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse browser url: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return errors.New("browser url must be http or https")
	}
	s.logger.DebugContext(ctx, "opening browser", "host", u.Host)
	if err := s.open(rawURL); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}
