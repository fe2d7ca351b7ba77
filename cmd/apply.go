package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steampatch/steampatchd/internal/daemon"
)

func NewApplyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply the configured patches once and reload the UI",
		Long: `Apply the configured patches once and reload the UI.

Runs a single connect, patch, reload cycle without watching the
bootstrap log. Useful after editing the patch tables in the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			daemon.SetupLogging()

			d, err := daemon.New()
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}

			d.RunOnce(cmd.Context())
			return nil
		},
	}
}
