package bridge

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"crb/internal/logging"
	"crb/internal/version"
)

// Server runs the bridge's MCP boundary on stdio.
type Server struct {
	mcp    *server.MCPServer
	logger *logging.Logger
}

// NewServer builds the MCP server and registers the router's tools on it.
func NewServer(router *Router, logger *logging.Logger) *Server {
	s := server.NewMCPServer(
		"crb",
		version.Version,
		server.WithToolCapabilities(true),
	)
	router.RegisterTools(s)
	return &Server{mcp: s, logger: logger}
}

// Serve blocks on the stdio transport until the peer disconnects or a
// shutdown signal arrives. Stdout belongs to the transport; all logging
// goes to stderr.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving MCP on stdio", map[string]interface{}{
			"version": version.Version,
		})
		errCh <- server.ServeStdio(s.mcp)
	}()

	select {
	case <-sigCh:
		s.logger.Info("Shutdown signal received", nil)
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
