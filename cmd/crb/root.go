package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crb/internal/capability"
	"crb/internal/config"
	"crb/internal/engine/filehost"
	"crb/internal/logging"
	"crb/internal/manifest"
	"crb/internal/version"
	"crb/internal/workspace"
)

var (
	// configRoot is the directory holding .crb/config.json and the
	// workspace file.
	configRoot string

	// logLevelFlag overrides the configured log level.
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "crb",
	Short: "CRB - Code Refactoring Bridge",
	Long: `CRB (Code Refactoring Bridge) exposes an external code-analysis engine's
refactoring and diagnostics operations to stateless clients: rename, move,
extract, find usages, diagnostics, and quick fixes over MCP stdio, with an
HTTP status daemon for introspection.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("CRB version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configRoot, "root", ".",
		"Directory containing .crb/config.json and the workspace file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (overrides config)")
}

// loadConfig reads the bridge configuration under the --root directory.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configRoot)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// buildLogger creates the process logger from config and flags.
func buildLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(level),
	})
}

// openHost opens every codebase the workspace file declares.
func openHost(cfg *config.Config, logger *logging.Logger) (*filehost.Host, error) {
	ws, err := workspace.LoadFile(workspacePath(cfg))
	if err != nil {
		return nil, err
	}
	return filehost.New(ws, logger)
}

// buildRegistry populates the capability registry from the manifest. A
// missing manifest file leaves the registry empty: every operation then
// reports UnsupportedLanguage, which is accurate for a bridge with no
// components declared.
func buildRegistry(cfg *config.Config, logger *logging.Logger) *capability.Registry {
	reg := capability.NewRegistry(logger)
	m, err := manifest.Load(resolveUnderRoot(cfg.Manifest))
	if err != nil {
		logger.Warn("Capability manifest not loaded; registry stays empty", map[string]interface{}{
			"path":  cfg.Manifest,
			"error": err.Error(),
		})
		return reg
	}
	m.Populate(reg, logger)
	return reg
}

func workspacePath(cfg *config.Config) string {
	return resolveUnderRoot(cfg.Workspace)
}

// resolveUnderRoot keeps absolute paths as-is and anchors relative ones at
// the --root directory.
func resolveUnderRoot(path string) string {
	if len(path) > 0 && path[0] == '/' {
		return path
	}
	return configRoot + "/" + path
}
