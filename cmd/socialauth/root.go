package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/yoii-livecomm/socialauth/config"
	"github.com/yoii-livecomm/socialauth/internal/bootstrap"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
	httpx "github.com/yoii-livecomm/socialauth/internal/http"
)

const (
	requestTimeout = 30 * time.Second
	// loginMargin covers the backend exchange after the browser flow ends.
	loginMargin = 30 * time.Second
)

// app is shared by every subcommand once the root pre-run has loaded config.
type app struct {
	cfg    config.AppConfig
	logger *slog.Logger
	client *apiClient
	addr   string
	format string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "socialauth",
		Short:        "Social sign-in daemon for Yoii LiveComm",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}
			if a.format != "text" && a.format != "json" {
				return fmt.Errorf("unknown output format %q (text|json)", a.format)
			}
			a.cfg = cfg
			a.logger = bootstrap.InitLogger(cmd.ErrOrStderr(), cfg.IsDev)
			if a.addr == "" {
				a.addr = cfg.HTTP.BaseURL()
			}
			a.client = newAPIClient(a.addr)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.addr, "addr", os.Getenv("SOCIALAUTH_ADDR"), "daemon base URL (env SOCIALAUTH_ADDR, default derived from HTTP_ADDR)")
	root.PersistentFlags().StringVarP(&a.format, "out", "o", "text", "output format: text|json")

	root.AddCommand(
		newServeCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newRefreshCmd(a),
		newProvidersCmd(a),
		newDeepLinkCmd(a),
		newCancelCmd(a),
	)
	return root
}

func parseProviderArg(raw string) (domainauth.SocialProvider, error) {
	p, err := domainauth.ParseProvider(raw)
	if err != nil {
		return "", fmt.Errorf("unknown provider %q (line|facebook|google|apple)", raw)
	}
	return p, nil
}

// emit prints v as indented JSON, or text when the text format is selected.
func (a *app) emit(w io.Writer, v any, text string) error {
	if a.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func describeUser(u *domainauth.UserProfile) string {
	if u == nil {
		return "unknown user"
	}
	name := u.Name
	if name == "" {
		name = u.Username
	}
	if name == "" {
		return u.ID
	}
	return fmt.Sprintf("%s (%s)", name, u.ID)
}

func newLoginCmd(a *app) *cobra.Command {
	var viaDaemon bool
	cmd := &cobra.Command{
		Use:   "login <provider>",
		Short: "Sign in with a social provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseProviderArg(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Providers.OAuthTimeout+loginMargin)
			defer cancel()

			var resp domainauth.BackendAuthResponse
			if viaDaemon {
				resp, err = a.daemonLogin(ctx, p)
			} else {
				resp, err = runLocalLogin(ctx, a, p)
			}
			switch {
			case autherrors.IsUserCancelled(err), errors.Is(err, errLoginCancelled):
				return a.emit(cmd.OutOrStdout(), map[string]bool{"cancelled": true}, "Sign-in cancelled")
			case err != nil:
				return err
			}
			return a.emit(cmd.OutOrStdout(), resp, fmt.Sprintf("Signed in as %s via %s", describeUser(&resp.User), p))
		},
	}
	cmd.Flags().BoolVar(&viaDaemon, "daemon", false, "run the login in a running daemon; by default this process serves the callback API on HTTP_ADDR until the flow ends")
	return cmd
}

var errLoginCancelled = errors.New("login cancelled")

func (a *app) daemonLogin(ctx context.Context, p domainauth.SocialProvider) (domainauth.BackendAuthResponse, error) {
	var resp domainauth.BackendAuthResponse
	status, err := a.client.do(ctx, http.MethodPost, "/auth/"+string(p)+"/login", nil, &resp)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			a.abandonFlow(p)
		}
		return resp, err
	}
	if status == http.StatusNoContent {
		return resp, errLoginCancelled
	}
	return resp, nil
}

// abandonFlow tells the daemon to drop a browser flow the user interrupted.
func (a *app) abandonFlow(p domainauth.SocialProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := a.client.do(ctx, http.MethodPost, "/oauth/"+string(p)+"/cancel", nil, nil); err != nil {
		a.logger.Debug("cancel pending flow", "provider", string(p), "error", err)
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout [provider]",
		Short: "Clear the stored session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/auth/logout"
			if len(args) == 1 {
				p, err := parseProviderArg(args[0])
				if err != nil {
					return err
				}
				path += "?provider=" + string(p)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			if _, err := a.client.do(ctx, http.MethodPost, path, nil, nil); err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), map[string]bool{"loggedOut": true}, "Signed out")
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			var resp httpx.SessionResponse
			if _, err := a.client.do(ctx, http.MethodGet, "/auth/session", nil, &resp); err != nil {
				return err
			}
			text := "Not signed in"
			if resp.LoggedIn {
				text = "Signed in as " + describeUser(resp.User)
				if resp.Provider != "" {
					text += " via " + string(resp.Provider)
				}
			}
			return a.emit(cmd.OutOrStdout(), resp, text)
		},
	}
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the app token and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			var resp httpx.RefreshResponse
			if _, err := a.client.do(ctx, http.MethodPost, "/auth/refresh", nil, &resp); err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), resp, resp.AppToken)
		},
	}
}

func newProvidersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the providers the daemon can sign in with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			var resp struct {
				Providers []domainauth.SocialProvider `json:"providers"`
			}
			if _, err := a.client.do(ctx, http.MethodGet, "/auth/providers", nil, &resp); err != nil {
				return err
			}
			if a.format == "json" {
				return a.emit(cmd.OutOrStdout(), resp, "")
			}
			for _, p := range resp.Providers {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// newDeepLinkCmd is registered as the OS handler for the app scheme; it
// forwards the re-entry URL to the daemon.
func newDeepLinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deeplink <url>",
		Short: "Deliver an OAuth re-entry URL to the pending sign-in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			if _, err := a.client.do(ctx, http.MethodPost, "/deeplink", httpx.DeepLinkRequest{URL: args[0]}, nil); err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), map[string]bool{"delivered": true}, "Delivered")
		},
	}
}

func newCancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <provider>",
		Short: "Abort the provider's pending browser sign-in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseProviderArg(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			if _, err := a.client.do(ctx, http.MethodPost, "/oauth/"+string(p)+"/cancel", nil, nil); err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), map[string]bool{"cancelled": true}, "Cancelled")
		},
	}
}
