package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/steampatch/steampatchd/internal/core"
	"github.com/steampatch/steampatchd/internal/daemon"
	"github.com/steampatch/steampatchd/internal/discovery"
	"github.com/steampatch/steampatchd/internal/steam"
)

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether Steam and its debugger are reachable",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			processName := core.GetSteamProcessName()
			if daemon.NewProcessInspector().IsRunning(processName) {
				fmt.Printf("Steam process (%s): running\n", processName)
			} else {
				fmt.Printf("Steam process (%s): not running\n", processName)
			}

			// One quick probe instead of the full discovery timeout
			disc := discovery.NewClient(core.GetDiscoveryURL(), steam.SharedJSContextTitle)
			disc.Timeout = 2 * time.Second
			disc.Interval = 100 * time.Millisecond

			url, err := disc.Discover(cmd.Context())
			if err != nil {
				fmt.Println("Debugger: not reachable")
				return
			}
			fmt.Printf("Debugger: reachable (%s)\n", url)
		},
	}
}
