// Package capability maps (language, operation kind) pairs to the
// implementations that can perform them. The table is populated once at
// startup from the capability manifest and queried many times; not every
// language implements every operation.
package capability

import (
	"crb/internal/engine"
)

// Kind is one refactoring operation kind routed through the registry.
type Kind string

const (
	// KindMove relocates a declaration to another file or container.
	KindMove Kind = "move"
	// KindExtractRange extracts a statement range into a new named unit.
	KindExtractRange Kind = "extractRange"
)

// ParseKind maps a request string to a Kind.
func ParseKind(raw string) (Kind, bool) {
	switch raw {
	case string(KindMove):
		return KindMove, true
	case string(KindExtractRange):
		return KindExtractRange, true
	}
	return "", false
}

// Target is what an operation applies to: a resolved symbol or a file,
// inside one codebase. Language carries the engine's classification.
type Target struct {
	Codebase engine.Codebase
	Symbol   engine.Element // nil for file-level targets
	File     string
	Language engine.Language
}

// SymbolTarget builds a Target for a resolved symbol.
func SymbolTarget(cb engine.Codebase, sym engine.Element, file string) Target {
	return Target{Codebase: cb, Symbol: sym, File: engine.NormalizePath(file), Language: sym.Language()}
}

// FileTarget builds a Target for a whole file.
func FileTarget(cb engine.Codebase, file string) Target {
	path := engine.NormalizePath(file)
	return Target{Codebase: cb, File: path, Language: cb.LanguageOf(path)}
}

// Args carries the operation-specific parameters a capability needs.
type Args struct {
	// TargetPath is the destination for Move.
	TargetPath string
	// Name is the new unit's name for ExtractRange.
	Name string
	// Range is the statement range for ExtractRange.
	Range engine.SourceRange
}

// Capability is a language-specific implementation of one operation kind.
type Capability interface {
	// Language returns the language tag this capability serves.
	Language() engine.Language

	// Kind returns the operation kind this capability implements.
	Kind() Kind

	// CanHandle reports whether this capability supports the concrete
	// target; a capability may support only a subset of its language's
	// constructs. An error counts as a decline, never as a failure.
	CanHandle(t Target) (bool, error)

	// Apply performs the operation. Invoked only from inside a write scope
	// on the arena; returns the affected files.
	Apply(t Target, args Args) (affectedFiles []string, err error)
}
