package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tinyhttpd/config"
)

var configWrite string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Long: `Print the configuration tinyhttpd would run with, after applying the
config file and TINYHTTPD_* environment variables. With --write the result
is saved to a file instead, which is a convenient way to start a config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if configWrite != "" {
			if err := cfg.Save(configWrite); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configWrite)
			return nil
		}
		return cfg.Encode(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringVarP(&configWrite, "write", "w", "", "write the configuration to this file")
}
