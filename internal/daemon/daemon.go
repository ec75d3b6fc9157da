// Package daemon is the bridge's HTTP introspection surface: health,
// status, open projects, and supported capabilities. It is read-only; all
// mutation goes through the MCP boundary.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"crb/internal/capability"
	"crb/internal/engine"
	"crb/internal/logging"
	"crb/internal/version"
	"crb/internal/workspace"
)

// Config tunes the daemon listener.
type Config struct {
	// Bind is the listen address; keep it loopback unless fronted by
	// something that terminates TLS.
	Bind string

	// Port is the listen port.
	Port int

	// TokenHash is the bcrypt hash of the bearer token protecting the API
	// endpoints. Empty disables auth with a logged warning.
	TokenHash string
}

// Daemon serves the status endpoints over one host and registry.
type Daemon struct {
	config    Config
	host      engine.Host
	registry  *capability.Registry
	logger    *logging.Logger
	startedAt time.Time
	server    *http.Server
}

// New creates a Daemon. Call Start to begin serving.
func New(cfg Config, host engine.Host, registry *capability.Registry, logger *logging.Logger) *Daemon {
	d := &Daemon{
		config:    cfg,
		host:      host,
		registry:  registry,
		logger:    logger,
		startedAt: time.Now(),
	}
	d.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port),
		Handler:      d.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return d
}

// routes builds the daemon's mux: /health open, everything under /api/v1
// behind bearer auth.
func (d *Daemon) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", d.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("/api/v1/status", d.handleStatus)
	api.HandleFunc("/api/v1/projects", d.handleProjects)
	api.HandleFunc("/api/v1/capabilities", d.handleCapabilities)
	mux.Handle("/api/v1/", d.withAuth(api))

	return mux
}

// Start begins serving and blocks until the listener fails or Shutdown is
// called.
func (d *Daemon) Start() error {
	d.logger.Info("Status daemon listening", map[string]interface{}{
		"addr": d.server.Addr,
		"auth": d.config.TokenHash != "",
	})
	err := d.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (d *Daemon) Shutdown(ctx context.Context) error {
	return d.server.Shutdown(ctx)
}

// HealthResponse is the unauthenticated liveness reply.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	d.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Uptime:  formatDuration(time.Since(d.startedAt)),
	})
}

// StatusResponse summarizes the bridge's live state.
type StatusResponse struct {
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	Projects     int    `json:"projects"`
	Indexing     int    `json:"indexing"`
	Capabilities int    `json:"capabilities"`
}

func (d *Daemon) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	open := engine.OpenCodebases(d.host)
	indexing := 0
	for _, cb := range open {
		if cb.Indexing() {
			indexing++
		}
	}
	d.writeJSON(w, http.StatusOK, StatusResponse{
		Version:      version.Version,
		Uptime:       formatDuration(time.Since(d.startedAt)),
		Projects:     len(open),
		Indexing:     indexing,
		Capabilities: len(d.registry.Pairs()),
	})
}

func (d *Daemon) handleProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	d.writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects": workspace.DescribeAll(d.host),
	})
}

func (d *Daemon) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	d.writeJSON(w, http.StatusOK, map[string]interface{}{
		"capabilities": d.registry.Pairs(),
	})
}

// APIError is the daemon's error reply shape.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (d *Daemon) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		d.logger.Error("Failed to encode JSON response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (d *Daemon) writeError(w http.ResponseWriter, status int, code, message string) {
	d.writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   APIError{Code: code, Message: message},
	})
}

func formatDuration(dur time.Duration) string {
	dur = dur.Round(time.Second)
	h := dur / time.Hour
	dur -= h * time.Hour
	m := dur / time.Minute
	dur -= m * time.Minute
	s := dur / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
