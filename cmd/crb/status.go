package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crb/internal/workspace"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the workspace's codebases",
	Long:  `Open the workspace file's codebases and print what the bridge would serve.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	projects := workspace.DescribeAll(host)
	fmt.Printf("Workspace: %s\n", workspacePath(cfg))
	fmt.Printf("Codebases: %d\n\n", len(projects))
	for _, p := range projects {
		state := "ready"
		if p.Indexing {
			state = "indexing"
		}
		fmt.Printf("  %-20s %-8s %6d files  %s\n", p.Name, state, p.Files, p.RootPath)
	}
	return nil
}
