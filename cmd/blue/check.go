package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/blue/internal/check"
	"github.com/suykerbuyk/blue/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Report whether config, patterns, model and store are usable",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		path := config.Resolve(cfgFlag)
		// Validation problems are reported as a check result, not an error.
		cfg, err := config.Load(cfgFlag)
		if err != nil {
			return err
		}
		report := check.Run(cfg, path, dir)
		fmt.Fprint(cmd.OutOrStdout(), report.Format())
		if report.HasFailures() {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
