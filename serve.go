//go:build unix

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tinyhttpd/config"
	"tinyhttpd/httpd"
	"tinyhttpd/logging"
)

var (
	servePort      int
	serveMaxConns  int
	serveLogLevel  string
	serveLogFormat string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the echo server",
	Long: `Run tinyhttpd with the built-in echo handler: every request is answered
with "HTTP/1.0 200 OK" followed by the request bytes as received.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (overrides config)")
	serveCmd.Flags().IntVar(&serveMaxConns, "max-conns", 0, "number of connection slots (overrides config)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "", "text or json (overrides config)")
}

// loadConfig applies command line overrides on top of the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("max-conns") {
		cfg.Server.MaxConns = serveMaxConns
	}
	if serveLogLevel != "" {
		cfg.Logging.Level = serveLogLevel
	}
	if serveLogFormat != "" {
		cfg.Logging.Format = serveLogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(os.Stderr, logging.LevelFromString(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))

	srv := &httpd.Server{
		Port:           cfg.Server.Port,
		Handler:        &echoHandler{logger: logger},
		MaxConns:       cfg.Server.MaxConns,
		PollTimeout:    cfg.PollTimeout(),
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		Logger:         logger,
		Transport:      &httpd.UnixTransport{Host: cfg.Server.Host, RecvSize: cfg.Server.RecvBufferSize},
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}
	stats := srv.Stats()
	logger.Info("server stopped",
		"accepted", stats.Accepted,
		"rejected", stats.Rejected,
		"served", stats.Served,
		"disconnected", stats.Disconnected)
	return nil
}
