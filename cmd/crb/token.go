package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crb/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the status daemon's bearer token",
}

var tokenNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new bearer token",
	Long: `Generate a new bearer token for the status daemon. The raw token is
printed once and never stored; its bcrypt hash is written to the config so
the daemon can verify it.`,
	RunE: runTokenNew,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenNewCmd)
}

func runTokenNew(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return err
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		return err
	}

	cfg.Daemon.TokenHash = hash
	if err := cfg.Save(configRoot); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println("New daemon token (shown once, store it now):")
	fmt.Println()
	fmt.Printf("  %s\n", token)
	fmt.Println()
	fmt.Println("Use it as: Authorization: Bearer <token>")
	return nil
}
