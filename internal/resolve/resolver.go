// Package resolve converts textual coordinates into concrete model elements
// inside one codebase. Every resolution runs against exactly one codebase,
// chosen before any symbol lookup begins.
package resolve

import (
	"crb/internal/engine"
	"crb/internal/errors"
	"crb/internal/logging"
)

// Resolver turns (file, line, column) coordinates into model elements using
// the engine's read-only query surface. All engine queries run under a
// scoped read lock on the host arena.
type Resolver struct {
	arena  *engine.Arena
	logger *logging.Logger
}

// NewResolver creates a Resolver over the given arena.
func NewResolver(arena *engine.Arena, logger *logging.Logger) *Resolver {
	return &Resolver{arena: arena, logger: logger}
}

// ResolveElement resolves a coordinate to an addressable element.
//
// If the coordinate sits on a reference, the referenced declaration is
// preferred. Otherwise the resolver walks upward from the smallest element
// at the offset to the first named, renamable ancestor, falling back to the
// raw leaf when no ancestor is named. Absence is an ElementNotFound error,
// never a nil result.
func (r *Resolver) ResolveElement(cb engine.Codebase, filePath string, line, column int) (engine.Element, error) {
	path := engine.NormalizePath(filePath)
	if err := checkAccess(cb, path); err != nil {
		return nil, err
	}

	var result engine.Element
	err := r.arena.Read(func() error {
		doc, err := cb.Document(path)
		if err != nil {
			return errors.Wrap(errors.FileNotFound, "file "+path+" not found in codebase "+cb.Name(), err)
		}

		offset, err := locateOffset(doc, path, line, column)
		if err != nil {
			return err
		}

		el, ok := doc.ElementAt(offset)
		if !ok {
			return errors.Newf(errors.ElementNotFound,
				"no element at %s:%d:%d", path, line, column)
		}

		result = preferDeclaration(el)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Resolved element", map[string]interface{}{
		"file":    path,
		"line":    line,
		"column":  column,
		"element": result.Name(),
	})
	return result, nil
}

// ResolveRange validates both endpoints of an inclusive range and returns
// it with normalized paths. Used by statement-extraction requests.
func (r *Resolver) ResolveRange(cb engine.Codebase, filePath string, startLine, startColumn, endLine, endColumn int) (engine.SourceRange, error) {
	path := engine.NormalizePath(filePath)
	if err := checkAccess(cb, path); err != nil {
		return engine.SourceRange{}, err
	}

	err := r.arena.Read(func() error {
		doc, err := cb.Document(path)
		if err != nil {
			return errors.Wrap(errors.FileNotFound, "file "+path+" not found in codebase "+cb.Name(), err)
		}
		if _, err := locateOffset(doc, path, startLine, startColumn); err != nil {
			return err
		}
		if _, err := locateOffset(doc, path, endLine, endColumn); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return engine.SourceRange{}, err
	}

	if endLine < startLine || (endLine == startLine && endColumn < startColumn) {
		return engine.SourceRange{}, errors.Newf(errors.InvalidInput,
			"range end %d:%d precedes start %d:%d", endLine, endColumn, startLine, startColumn)
	}

	return engine.SourceRange{
		Start: engine.NewSourceLocation(path, startLine, startColumn),
		End:   engine.NewSourceLocation(path, endLine, endColumn),
	}, nil
}

// checkAccess enforces the resolution preconditions: codebase not indexing
// and file inside its content.
func checkAccess(cb engine.Codebase, path string) error {
	if cb.Indexing() {
		return errors.Newf(errors.IndexingInProgress,
			"codebase %q is indexing; results would be unreliable, retry shortly", cb.Name())
	}
	if !cb.ContainsFile(path) {
		return errors.Newf(errors.FileNotInProject,
			"file %q is not inside codebase %q", path, cb.Name())
	}
	return nil
}

// locateOffset validates the 1-based coordinate against the document's
// observed bounds and converts it to a flat offset. A column one past the
// end of the line is valid (caret after the last character).
func locateOffset(doc engine.Document, path string, line, column int) (int, error) {
	lineCount := doc.LineCount()
	if line < 1 || line > lineCount {
		return 0, errors.Newf(errors.LocationOutOfBounds,
			"line %d is outside the valid range [1, %d] for %s", line, lineCount, path)
	}

	lineLength, err := doc.LineLength(line)
	if err != nil {
		return 0, errors.Wrap(errors.InternalError, "engine rejected a validated line", err)
	}
	if column < 1 || column > lineLength+1 {
		return 0, errors.Newf(errors.LocationOutOfBounds,
			"column %d is outside the valid range [1, %d] for %s:%d", column, lineLength+1, path, line)
	}

	offset, err := doc.Offset(line, column)
	if err != nil {
		return 0, errors.Wrap(errors.InternalError, "offset conversion failed for validated coordinate", err)
	}
	return offset, nil
}

// preferDeclaration implements the element-selection policy: a reference
// resolves to its declaration; otherwise the first named ancestor wins;
// otherwise the raw leaf.
func preferDeclaration(el engine.Element) engine.Element {
	if decl, ok := el.Declaration(); ok {
		return decl
	}
	for cur := el; ; {
		if cur.IsNamed() {
			return cur
		}
		parent, ok := cur.Parent()
		if !ok {
			return el
		}
		cur = parent
	}
}
