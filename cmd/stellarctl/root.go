package main

import (
	"io"
	"log"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stellarctl",
		Short: "stellarctl - offline tooling for the stellar prediction service",
		Long: `stellarctl runs stellar property predictions against a local model
directory and manages the model bundles the service loads.`,
		Version:      version,
		SilenceUsage: true,
	}

	verbose := cmd.PersistentFlags().Bool("verbose", false, "Show component log output")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if !*verbose {
			log.SetOutput(io.Discard)
		}
	}

	cmd.AddCommand(newPredictCommand())
	cmd.AddCommand(newBundlesCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}
