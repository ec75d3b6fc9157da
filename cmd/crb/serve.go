package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"crb/internal/bridge"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start the bridge's MCP server. It opens the codebases the workspace file
declares, populates the capability registry from the manifest, and serves
tool requests over stdio until the peer disconnects.

Stdout belongs to the MCP transport; all logging goes to stderr.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := buildLogger(cfg)

	host, err := openHost(cfg, logger)
	if err != nil {
		return err
	}
	defer host.Close()

	registry := buildRegistry(cfg, logger)

	router := bridge.NewRouter(host, registry, logger, bridge.Options{
		Timeout:          time.Duration(cfg.Executor.TimeoutSeconds) * time.Second,
		DiagnosticsLimit: cfg.Diagnostics.DefaultLimit,
	})

	return bridge.NewServer(router, logger).Serve(context.Background())
}
