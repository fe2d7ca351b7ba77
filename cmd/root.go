package cmd

import (
	"fmt"
	"os"

	"github.com/goforj/godump"
	"github.com/spf13/cobra"

	"github.com/steampatch/steampatchd/internal/core"
)

func NewRootCommand() *cobra.Command {
	var configPath string
	var verbose int

	homeDir, _ := os.UserHomeDir()

	rootCmd := &cobra.Command{
		Use:   "steampatchd",
		Short: "steampatchd - keeps the Steam client UI patched",
		Long: `steampatchd - keeps the Steam client UI patched

Applies the configured text patches to the Steam client's web UI files
and reloads the UI through the CEF remote debugger. Patches are
re-applied automatically whenever Steam restarts or finishes an update.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize config and bind global flags to the config
			messages, err := core.InitializeConfig(cmd)
			for _, message := range messages {
				fmt.Println(message)
			}
			return err
		},
	}
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config-path", fmt.Sprintf("%s/%s", homeDir, core.BaseDirName),
		"config path",
	)
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "more output, repeat for even more")

	debugCmd := &cobra.Command{
		Use:    "debug",
		Short:  "Dump the effective configuration",
		Hidden: true,
		Run: func(cmd *cobra.Command, args []string) {
			godump.Dump(core.Config.AllSettings())
		},
	}
	rootCmd.AddCommand(
		debugCmd,
		NewRunCommand(),
		NewApplyCommand(),
		NewStatusCommand(),
		NewHistoryCommand(),
		NewVersionCommand(),
	)

	return rootCmd
}
