// Package workspace selects which of several concurrently open codebases a
// request refers to, and loads the workspace file describing what to open.
package workspace

import (
	"fmt"
	"strings"

	"crb/internal/engine"
	"crb/internal/errors"
	"crb/internal/logging"
)

// Disambiguator resolves a file path and an optional hint to exactly one
// open codebase. Pure lookup over the host's live state; no side effects.
type Disambiguator struct {
	host   engine.Host
	logger *logging.Logger
}

// NewDisambiguator creates a Disambiguator over the given host.
func NewDisambiguator(host engine.Host, logger *logging.Logger) *Disambiguator {
	return &Disambiguator{host: host, logger: logger}
}

// Resolve picks the codebase that owns filePath.
//
// The hint is advisory: a hint that matches an open codebase's name
// (case-insensitive exact) or root path (exact or "/hint" suffix) wins
// outright, even when content detection would pick differently. A hint that
// matches nothing falls through to content-based detection rather than
// failing. Content-root membership is authoritative; root-path prefix
// matching is only a fallback for files the index does not claim.
func (d *Disambiguator) Resolve(filePath, hint string) (engine.Codebase, error) {
	path := engine.NormalizePath(filePath)
	open := engine.OpenCodebases(d.host)

	if len(open) == 0 {
		return nil, errors.New(errors.ProjectNotFound, "no codebases are currently open")
	}

	if hint != "" {
		if cb, ok := matchHint(open, hint); ok {
			return cb, nil
		}
		d.logger.Debug("Project hint matched nothing, falling back to content detection", map[string]interface{}{
			"hint": hint,
			"file": path,
		})
	}

	// Content roots first: the engine's file index is authoritative.
	for _, cb := range open {
		if cb.ContainsFile(path) {
			return cb, nil
		}
	}

	// Fallback: simple path-prefix match against each root.
	for _, cb := range open {
		if underRoot(path, cb.RootPath()) {
			return cb, nil
		}
	}

	return nil, errors.Newf(errors.FileNotInProject,
		"file %q does not belong to any open codebase (open: %s); retry with an explicit project hint",
		path, strings.Join(names(open), ", "))
}

// ByName returns the open codebase with the given name, case-insensitively.
func (d *Disambiguator) ByName(name string) (engine.Codebase, error) {
	open := engine.OpenCodebases(d.host)
	for _, cb := range open {
		if strings.EqualFold(cb.Name(), name) {
			return cb, nil
		}
	}
	return nil, errors.Newf(errors.ProjectNotFound,
		"no open codebase named %q (open: %s)", name, strings.Join(names(open), ", "))
}

func matchHint(open []engine.Codebase, hint string) (engine.Codebase, bool) {
	for _, cb := range open {
		if strings.EqualFold(cb.Name(), hint) {
			return cb, true
		}
	}
	normHint := engine.NormalizePath(hint)
	for _, cb := range open {
		root := cb.RootPath()
		if root == normHint || strings.HasSuffix(root, "/"+normHint) {
			return cb, true
		}
	}
	return nil, false
}

func underRoot(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(root, "/")+"/")
}

func names(codebases []engine.Codebase) []string {
	out := make([]string, 0, len(codebases))
	for _, cb := range codebases {
		out = append(out, cb.Name())
	}
	return out
}

// Describe summarizes one codebase for the status surface.
type Describe struct {
	Name     string `json:"name"`
	RootPath string `json:"rootPath"`
	Indexing bool   `json:"indexing"`
	Files    int    `json:"files"`
}

// DescribeAll summarizes every open codebase.
func DescribeAll(host engine.Host) []Describe {
	open := engine.OpenCodebases(host)
	out := make([]Describe, 0, len(open))
	for _, cb := range open {
		out = append(out, Describe{
			Name:     cb.Name(),
			RootPath: cb.RootPath(),
			Indexing: cb.Indexing(),
			Files:    len(cb.Files()),
		})
	}
	return out
}

// String implements fmt.Stringer for log lines.
func (d Describe) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.RootPath)
}
