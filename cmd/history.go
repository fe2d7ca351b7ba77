package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/steampatch/steampatchd/internal/core"
	"github.com/steampatch/steampatchd/internal/db"
)

func NewHistoryCommand() *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent patch cycles",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			history, err := db.Open(core.GetHistoryDBPath())
			if err != nil {
				slog.Error(fmt.Sprintf("Failed to open history database: %v", err))
				return
			}
			defer history.Close()

			events, err := history.GetRecentPatchEvents(limit)
			if err != nil {
				slog.Error(fmt.Sprintf("Failed to read history: %v", err))
				return
			}

			if len(events) == 0 {
				fmt.Println("No patch cycles recorded yet.")
				return
			}

			fmt.Println("Recent patch cycles:")
			for _, e := range events {
				line := fmt.Sprintf(
					"  %s  %-22s %s",
					e.Timestamp.Local().Format(time.DateTime), e.Trigger, e.Outcome,
				)
				if e.Details != "" {
					line += fmt.Sprintf(" (%s)", e.Details)
				}
				fmt.Println(line)
			}
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of cycles to show")

	return historyCmd
}
