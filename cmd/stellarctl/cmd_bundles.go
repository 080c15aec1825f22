package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"stellar-backend/internal/ml"
)

func newBundlesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundles",
		Short: "Manage model bundles",
	}

	cmd.AddCommand(newBundlesInitCommand())
	cmd.AddCommand(newBundlesInspectCommand())

	return cmd
}

func newBundlesInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <dir>",
		Short: "Write the sample model bundles to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if ml.HasBundles(dir) && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "Bundles already present in %s (use --force to overwrite)\n", dir)
				return nil
			}
			if err := ml.CreateSampleBundles(dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample bundles written to %s\n", dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing bundles")
	return cmd
}

func newBundlesInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <dir>",
		Short: "Load and validate the bundles in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ml.LoadRegistry(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTASK\tSCALER\tPREDICTOR\tDECODER")
			for _, info := range registry.Bundles() {
				decoder := info.Decoder
				if decoder == "" {
					decoder = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", info.Name, info.Task, info.Scaler, info.Predictor, decoder)
			}
			return w.Flush()
		},
	}
}
