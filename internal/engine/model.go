package engine

import "context"

// Element is an opaque handle into the engine's code model. Handles are
// only valid for the duration of the read or write scope that produced
// them; the bridge never retains one across scope boundaries.
type Element interface {
	// Name returns the display name, empty for anonymous elements.
	Name() string

	// Language returns the language tag the engine classified this element as.
	Language() Language

	// IsNamed reports whether the element is a named, renamable declaration.
	IsNamed() bool

	// Parent returns the enclosing element, or false at the document root.
	Parent() (Element, bool)

	// Declaration resolves a reference element to its declaration. Returns
	// false when the element is itself a declaration or resolution fails.
	Declaration() (Element, bool)

	// Location returns the element's start position.
	Location() SourceLocation
}

// Document provides line-oriented access to one file inside the model.
type Document interface {
	// LineCount returns the number of lines, at least 1 for an empty file.
	LineCount() int

	// LineLength returns the length of the 1-based line.
	LineLength(line int) (int, error)

	// Offset converts a validated 1-based (line, column) to a flat offset.
	Offset(line, column int) (int, error)

	// ElementAt returns the smallest syntactic element at the offset.
	ElementAt(offset int) (Element, bool)

	// Line returns the text of the 1-based line, used for previews.
	Line(line int) (string, error)
}

// Refactorer exposes the engine's mutation entry points. Every method must
// be invoked from inside a write scope on the arena; implementations may
// assume the transactional scope is already open.
type Refactorer interface {
	// Rename renames the declaration and all its references.
	Rename(el Element, newName string) (affectedFiles []string, err error)

	// Move relocates the declaration to the target path.
	Move(el Element, targetPath string) (affectedFiles []string, err error)

	// ExtractRange extracts the statements in r into a new named unit.
	ExtractRange(r SourceRange, name string) (affectedFiles []string, err error)

	// ApplyFix invokes the quick fix with the given positional id on d.
	ApplyFix(d Diagnostic, fixID int) (affectedFiles []string, err error)
}

// Codebase is one loaded, independently indexed source tree the engine is
// aware of. Owned by the host; the bridge only observes it.
type Codebase interface {
	// Name returns the codebase's display name.
	Name() string

	// RootPath returns the normalized root directory.
	RootPath() string

	// Indexing reports whether background indexing is in progress. While
	// set, no reliable query is permitted.
	Indexing() bool

	// Disposed reports whether the host has closed this codebase.
	Disposed() bool

	// ContainsFile checks membership in the codebase's content roots.
	// This is authoritative; path-prefix matching is only a fallback.
	ContainsFile(path string) bool

	// LanguageOf classifies a file to a language tag.
	LanguageOf(path string) Language

	// Document opens the model document for a file.
	Document(path string) (Document, error)

	// Files enumerates all files in the content roots in a stable order.
	Files() []string

	// Refactorer returns the mutation surface, or false when the engine
	// provides no semantic support for this codebase.
	Refactorer() (Refactorer, bool)

	// UsagesOf finds all usages of a declaration, including the declaration
	// itself when the engine reports it.
	UsagesOf(el Element) ([]Usage, error)

	// CachedDiagnostics returns whatever background analysis has already
	// computed for the file. Empty for files never analyzed.
	CachedDiagnostics(path string) ([]Diagnostic, error)

	// Analyze runs the engine's local analyzers against the file on demand.
	Analyze(ctx context.Context, path string) ([]Diagnostic, error)
}

// Host enumerates the open codebases and owns the model arena.
type Host interface {
	// Codebases returns the currently open codebases in a stable order.
	// Disposed codebases may linger briefly; callers filter them.
	Codebases() []Codebase

	// Arena returns the single-writer/multi-reader lock over the model.
	Arena() *Arena
}

// OpenCodebases filters out disposed codebases from the host's list.
func OpenCodebases(h Host) []Codebase {
	all := h.Codebases()
	open := make([]Codebase, 0, len(all))
	for _, cb := range all {
		if !cb.Disposed() {
			open = append(open, cb)
		}
	}
	return open
}
