// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/ManuGH/spotifykit/auth"
	"github.com/ManuGH/spotifykit/internal/config"
)

const (
	defaultLoginTimeout = 5 * time.Minute
	shutdownTimeout     = 5 * time.Second
)

func newLoginCmd(c *cli) *cobra.Command {
	var (
		timeout    time.Duration
		showDialog bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize spotifykit with your Spotify account",
		Long: "login opens a callback server on the configured redirect URL, prints the authorization page " +
			"and saves the session to the token store once Spotify redirects back (authorization code flow with PKCE).",
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := c.config(ctx)
			if err != nil {
				return err
			}
			store, err := c.tokenStore(ctx, cfg)
			if err != nil {
				return err
			}
			return c.login(ctx, cfg, store, timeout, auth.WithShowDialog(showDialog))
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", defaultLoginTimeout, "how long to wait for the redirect")
	cmd.Flags().BoolVar(&showDialog, "show-dialog", false, "ask for approval even if already granted")
	return cmd
}

func (c *cli) login(ctx context.Context, cfg config.Config, store auth.TokenStore, timeout time.Duration, opts ...auth.Option) error {
	a := c.authenticator(cfg, opts...)
	state := auth.NewState()
	verifier, challenge := auth.PKCE()

	srv, err := a.NewCallbackServer(state, oauth2.VerifierOption(verifier))
	if err != nil {
		return &usageError{err: err}
	}
	if err := srv.Start(); err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	fmt.Fprintf(c.out(), "Open this page to authorize spotifykit:\n\n  %s\n\n", a.AuthURL(state, challenge))

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var sess *auth.Session
	err = withSpinner(c.errWriter(), "Waiting for Spotify to redirect to "+cfg.RedirectURL, func() error {
		var werr error
		sess, werr = srv.Wait(waitCtx)
		return werr
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("no redirect within %s", timeout)
	}
	if err != nil {
		return err
	}

	if err := store.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	// Best effort: remember who logged in.
	if client, err := c.webClient(ctx, false); err == nil {
		if me, err := client.CurrentUser(ctx); err == nil {
			sess.CanonicalUsername = me.ID
			if err := store.Save(ctx, sess); err != nil {
				c.logger.Warn().Err(err).Msg("save username failed")
			}
		}
	}

	who := sess.CanonicalUsername
	if who == "" {
		who = "your account"
	}
	_, err = fmt.Fprintf(c.out(), "Logged in as %s. Token expires in %s.\n", who, sess.ExpiresIn().Round(time.Second))
	return err
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := c.config(ctx)
			if err != nil {
				return err
			}
			store, err := c.tokenStore(ctx, cfg)
			if err != nil {
				return err
			}
			if err := store.Clear(ctx); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return err
		},
	}
}

func newTokenCmd(c *cli) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Show the stored session",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := c.config(ctx)
			if err != nil {
				return err
			}
			store, err := c.tokenStore(ctx, cfg)
			if err != nil {
				return err
			}
			sess, err := store.Load(ctx)
			if err != nil {
				return err
			}

			if refresh {
				sess, err = c.authenticator(cfg).Refresh(ctx, sess)
				if err != nil {
					return err
				}
				if err := store.Save(ctx, sess); err != nil {
					return fmt.Errorf("save session: %w", err)
				}
			}

			t := newTable(cmd.OutOrStdout(), "Field", "Value")
			t.AppendRow([]any{"User", orDash(sess.CanonicalUsername)})
			t.AppendRow([]any{"Store", cfg.Token.Store})
			t.AppendRow([]any{"Valid", yesNo(sess.Valid())})
			t.AppendRow([]any{"Expires", sess.Expiry.Local().Format(time.RFC1123)})
			t.AppendRow([]any{"Expires in", sess.ExpiresIn().Round(time.Second).String()})
			t.AppendRow([]any{"Refreshable", yesNo(sess.RefreshToken != "")})
			t.AppendRow([]any{"Scopes", orDash(strings.Join(sess.Scopes, " "))})
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "renew the access token first")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
