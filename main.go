package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tinyhttpd",
	Short: "A single-threaded HTTP/1.0 server with a fixed connection pool",
	Long: `tinyhttpd accepts a bounded number of client connections, waits for a
complete request header on each one and hands it to a handler. Everything
runs on one goroutine driven by a poll loop; when every slot is taken new
clients receive "429 Too Many Requests".`,
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
