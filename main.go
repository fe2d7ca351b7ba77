package main

import (
	"fmt"
	"os"

	"github.com/steampatch/steampatchd/cmd"
)

func main() {
	// If no command specified, default to running the daemon
	if len(os.Args) == 1 {
		os.Args = []string{os.Args[0], "run"}
	}

	root := cmd.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
