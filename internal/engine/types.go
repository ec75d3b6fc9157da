// Package engine pins the call/return contract of the external analysis
// engine. The engine itself (parsing, type resolution, refactoring
// transformations) is a collaborator this module never re-implements; these
// types and interfaces are the surface the bridge is allowed to touch.
package engine

import (
	"strings"

	"crb/internal/errors"
)

// Language identifies a programming language known to the engine.
type Language string

const (
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangUnknown    Language = "unknown"
)

// NormalizePath converts a file path to forward slashes. Requests may carry
// separators from a client on another OS, so backslashes are replaced
// unconditionally. All paths held in bridge types are normalized exactly
// once, at construction.
func NormalizePath(path string) string {
	return strings.ReplaceAll(strings.TrimSpace(path), `\`, "/")
}

// SourceLocation is a 1-based (line, column) coordinate inside a file.
// Immutable value, constructed per request.
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// NewSourceLocation builds a SourceLocation with a normalized file path.
func NewSourceLocation(file string, line, column int) SourceLocation {
	return SourceLocation{File: NormalizePath(file), Line: line, Column: column}
}

// SourceRange is an inclusive pair of locations used by statement-extraction
// requests. Start and End always refer to the same file.
type SourceRange struct {
	Start SourceLocation `json:"start"`
	End   SourceLocation `json:"end"`
}

// Severity ranks diagnostic findings. Error sorts before Warning, Warning
// before WeakWarning, and so on down to Hint.
type Severity string

const (
	SeverityError       Severity = "error"
	SeverityWarning     Severity = "warning"
	SeverityWeakWarning Severity = "weakWarning"
	SeverityInfo        Severity = "info"
	SeverityHint        Severity = "hint"
)

var severityRank = map[Severity]int{
	SeverityError:       0,
	SeverityWarning:     1,
	SeverityWeakWarning: 2,
	SeverityInfo:        3,
	SeverityHint:        4,
}

// Rank returns the sort rank of the severity, errors first. Unknown
// severities sort last.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// ParseSeverity maps a request string to a Severity, case-insensitively.
func ParseSeverity(raw string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "weakwarning", "weak_warning":
		return SeverityWeakWarning, true
	case "info", "information":
		return SeverityInfo, true
	case "hint":
		return SeverityHint, true
	}
	return "", false
}

// QuickFix is a suggested remedial action attached to one diagnostic.
// ID is the positional index into the owning diagnostic's fix list; it is
// not globally unique and must be re-resolved against a freshly collected
// diagnostic before being applied.
type QuickFix struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Family      string `json:"family,omitempty"`
	Description string `json:"description,omitempty"`
}

// Diagnostic is a single finding reported by the engine's analysis.
type Diagnostic struct {
	File        string     `json:"file"`
	StartLine   int        `json:"startLine"`
	StartColumn int        `json:"startColumn"`
	EndLine     int        `json:"endLine"`
	EndColumn   int        `json:"endColumn"`
	Severity    Severity   `json:"severity"`
	Message     string     `json:"message"`
	Source      string     `json:"source,omitempty"`
	Fixes       []QuickFix `json:"fixes,omitempty"`
}

// Covers reports whether the diagnostic's range contains the given 1-based
// line and column.
func (d Diagnostic) Covers(line, column int) bool {
	if line < d.StartLine || line > d.EndLine {
		return false
	}
	if line == d.StartLine && column < d.StartColumn {
		return false
	}
	if line == d.EndLine && d.EndColumn > 0 && column > d.EndColumn {
		return false
	}
	return true
}

// Usage is one occurrence of a symbol, with a single-line preview.
type Usage struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Preview string `json:"preview"`
}

// OperationResult is the outcome of a mutating operation. Success and
// failure are mutually exclusive; a failure always carries an error kind
// from the closed taxonomy.
type OperationResult struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	AffectedFiles []string         `json:"affectedFiles"`
	Code          errors.ErrorCode `json:"code,omitempty"`
}

// Succeeded builds a success result.
func Succeeded(message string, affectedFiles ...string) OperationResult {
	if affectedFiles == nil {
		affectedFiles = []string{}
	}
	return OperationResult{Success: true, Message: message, AffectedFiles: affectedFiles}
}

// Failed builds a failure result carrying an error kind.
func Failed(code errors.ErrorCode, message string) OperationResult {
	return OperationResult{Success: false, Message: message, Code: code, AffectedFiles: []string{}}
}
