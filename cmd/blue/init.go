package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/blue/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, action, err := config.WriteDefault(initForce)
		if err != nil {
			return err
		}
		if action == "exists" {
			fmt.Fprintf(cmd.OutOrStdout(), "exists: %s (use --force to overwrite)\n", config.CompressHome(path))
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", action, config.CompressHome(path))
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config")
	rootCmd.AddCommand(initCmd)
}
