package main

//	@title			daystreak API
//	@version		1.0
//	@description	Tasks, daily productivity status, streaks and AI roadmaps.
//	@schemes		http https
//	@BasePath		/api/v1

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "daystreak",
		Short:   "daystreak productivity API",
		Version: Version,
		// bare invocation serves, as container images expect
		RunE: runServe,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(recomputeCmd())
	rootCmd.AddCommand(archiveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
