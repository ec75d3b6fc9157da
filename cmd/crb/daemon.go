package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"crb/internal/daemon"
)

var (
	daemonBind string
	daemonPort int
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the HTTP status daemon",
	Long: `Start the read-only HTTP status surface: /health without auth, and
/api/v1/status, /api/v1/projects, /api/v1/capabilities behind bearer-token
auth. Generate a token with "crb token new".`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().StringVar(&daemonBind, "bind", "", "Bind address (overrides config)")
	daemonCmd.Flags().IntVar(&daemonPort, "port", 0, "Listen port (overrides config)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
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

	dcfg := daemon.Config{
		Bind:      cfg.Daemon.Bind,
		Port:      cfg.Daemon.Port,
		TokenHash: cfg.Daemon.TokenHash,
	}
	if daemonBind != "" {
		dcfg.Bind = daemonBind
	}
	if daemonPort != 0 {
		dcfg.Port = daemonPort
	}

	d := daemon.New(dcfg, host, registry, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutdown signal received", nil)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.Shutdown(ctx); err != nil {
			logger.Error("Daemon shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	return d.Start()
}
