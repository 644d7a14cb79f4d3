package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tradeboard/internal/config"
	"tradeboard/internal/gitpush"
	"tradeboard/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "gitpush:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		message  string
		branch   string
		remote   string
		dir      string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           "gitpush",
		Short:         "Stage, commit and push the working tree",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(config.LoggingConfig{Level: logLevel, Format: "console"}, cmd.ErrOrStderr())
			pusher := gitpush.New(gitpush.ExecRunner{Dir: dir}, logger)
			return pusher.Push(cmd.Context(), gitpush.Options{
				Message:     message,
				Branch:      branch,
				Remote:      remote,
				Interactive: term.IsTerminal(int(os.Stdin.Fd())),
				In:          cmd.InOrStdin(),
				Out:         cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message (prompted for when empty)")
	cmd.Flags().StringVar(&branch, "branch", gitpush.DefaultBranch, "branch to rename to and push")
	cmd.Flags().StringVar(&remote, "remote", gitpush.DefaultRemote, "remote to push to")
	cmd.Flags().StringVar(&dir, "dir", "", "repository directory (default: current directory)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	return cmd
}
