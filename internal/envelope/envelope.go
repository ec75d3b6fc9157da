// Package envelope defines the outbound response shapes of the bridge. Every
// tool reply is one of a small set of envelopes so clients can parse results
// without per-tool knowledge: refactoring outcomes, diagnostic listings,
// usage listings, status listings, and a uniform error shape carrying a code
// from the closed taxonomy.
package envelope

import (
	"encoding/json"

	"crb/internal/capability"
	"crb/internal/diag"
	"crb/internal/engine"
	"crb/internal/errors"
)

// Refactor is the reply to a mutating operation. Success and Error are
// mutually exclusive; a logical failure is a Success=false Refactor, not an
// Error envelope.
type Refactor struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	AffectedFiles []string `json:"affectedFiles"`
}

// FromResult converts an operation result into the wire shape.
func FromResult(r engine.OperationResult) Refactor {
	files := r.AffectedFiles
	if files == nil {
		files = []string{}
	}
	return Refactor{Success: r.Success, Message: r.Message, AffectedFiles: files}
}

// Diagnostics is the reply to a diagnostics scan.
type Diagnostics struct {
	Diagnostics []engine.Diagnostic `json:"diagnostics"`
	TotalCount  int                 `json:"totalCount"`
	Truncated   bool                `json:"truncated"`
}

// FromDiagResult converts an aggregation result into the wire shape.
func FromDiagResult(r diag.Result) Diagnostics {
	ds := r.Diagnostics
	if ds == nil {
		ds = []engine.Diagnostic{}
	}
	return Diagnostics{Diagnostics: ds, TotalCount: r.TotalCount, Truncated: r.Truncated}
}

// Usages is the reply to a find-usages request.
type Usages struct {
	Symbol string         `json:"symbol"`
	Usages []engine.Usage `json:"usages"`
	Total  int            `json:"total"`
}

// NewUsages builds a Usages envelope; the total always matches the slice.
func NewUsages(symbol string, usages []engine.Usage) Usages {
	if usages == nil {
		usages = []engine.Usage{}
	}
	return Usages{Symbol: symbol, Usages: usages, Total: len(usages)}
}

// Project describes one open codebase for list_projects.
type Project struct {
	Name     string `json:"name"`
	RootPath string `json:"rootPath"`
	Indexing bool   `json:"indexing"`
}

// Projects is the reply to list_projects.
type Projects struct {
	Projects []Project `json:"projects"`
}

// NewProjects builds a Projects envelope over the open codebases, skipping
// disposed ones.
func NewProjects(codebases []engine.Codebase) Projects {
	out := Projects{Projects: []Project{}}
	for _, cb := range codebases {
		if cb.Disposed() {
			continue
		}
		out.Projects = append(out.Projects, Project{
			Name:     cb.Name(),
			RootPath: cb.RootPath(),
			Indexing: cb.Indexing(),
		})
	}
	return out
}

// Capabilities is the reply to get_capabilities.
type Capabilities struct {
	Capabilities []capability.Pair `json:"capabilities"`
}

// Error is the uniform failure envelope. Code is always one of the closed
// taxonomy codes or "TIMEOUT".
type Error struct {
	Success bool             `json:"success"`
	Error   string           `json:"error"`
	Code    errors.ErrorCode `json:"code"`
}

// FromError maps any error to the wire shape via the taxonomy.
func FromError(err error) Error {
	return Error{Success: false, Error: err.Error(), Code: errors.CodeOf(err)}
}

// Render marshals any envelope to its JSON wire form.
func Render(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(errors.InternalError, "response encoding failed", err)
	}
	return string(data), nil
}
