package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steampatch/steampatchd/internal/daemon"
)

func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the patch daemon in the foreground",
		Long: `Run the patch daemon in the foreground.

If Steam is already running its UI is patched and reloaded right away.
The daemon then watches the bootstrap log and repeats the cycle every
time a verification/update finishes, until interrupted.`,
		Aliases: []string{"watch"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			daemon.SetupLogging()

			d, err := daemon.New()
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return d.Run(ctx)
		},
	}
}
