package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "List supported (language, operation) pairs",
	Long: `Load the capability manifest and print every declared (language,
operation) pair with its availability.`,
	RunE: runCapabilities,
}

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := buildLogger(cfg)

	registry := buildRegistry(cfg, logger)
	pairs := registry.Pairs()
	if len(pairs) == 0 {
		fmt.Println("No capabilities declared.")
		return nil
	}

	for _, p := range pairs {
		state := "available"
		if !p.Available {
			state = "not loaded"
		}
		fmt.Printf("  %-12s %-14s %s\n", p.Language, p.Kind, state)
	}
	return nil
}
