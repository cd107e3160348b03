// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command spotifykit is a terminal client for the Spotify Web API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ManuGH/spotifykit/auth"
	xglog "github.com/ManuGH/spotifykit/internal/log"
	"github.com/ManuGH/spotifykit/webapi"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and maps the outcome to an exit code:
// 0 success, 1 runtime failure, 2 usage or configuration error.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, &cli{}, args, stdout, stderr)
}

func execute(ctx context.Context, c *cli, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(xglog.ContextWithInvocationID(ctx, uuid.NewString()))
	c.close()
	if err == nil {
		return 0
	}

	fmt.Fprintln(stderr, "Error:", describe(err))
	var usage *usageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

// usageError marks failures caused by the invocation rather than by the API.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// describe adds a hint for the failures users can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, auth.ErrNoToken):
		return err.Error() + " (run `spotifykit login` first)"
	case errors.Is(err, webapi.ErrForbidden):
		return err.Error() + " (the token may lack a scope; run `spotifykit login` again)"
	case errors.Is(err, webapi.ErrRateLimited):
		return err.Error() + " (slow down or lower http.rateLimit)"
	}
	return err.Error()
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "spotifykit",
		Short:         "Spotify Web API from the terminal",
		Long:          "spotifykit signs in to Spotify, browses the catalog, manages playlists and remote-controls Spotify Connect devices.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			c.stdout = cmd.OutOrStdout()
			c.stderr = cmd.ErrOrStderr()
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to config file (YAML); defaults to the user config dir")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override the log level (debug, info, warn, error)")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.AddCommand(
		newVersionCmd(),
		newConfigCmd(c),
		newLoginCmd(c),
		newLogoutCmd(c),
		newTokenCmd(c),
		newMeCmd(c),
		newSearchCmd(c),
		newAlbumCmd(c),
		newArtistCmd(c),
		newGenresCmd(c),
		newTopCmd(c),
		newPlaylistCmd(c),
		newPlayerCmd(c),
		newCacheCmd(c),
	)
	return root
}
