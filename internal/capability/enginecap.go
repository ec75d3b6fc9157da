package capability

import (
	"fmt"

	"crb/internal/engine"
	"crb/internal/errors"
)

// RefactorerCapability adapts a codebase's engine-side refactorer to one
// (language, kind) pair. It declines targets whose codebase exposes no
// refactoring support, and Move additionally requires a named symbol.
type RefactorerCapability struct {
	lang engine.Language
	kind Kind
}

// NewRefactorerCapability creates the adapter for one pair.
func NewRefactorerCapability(lang engine.Language, kind Kind) *RefactorerCapability {
	return &RefactorerCapability{lang: lang, kind: kind}
}

func (c *RefactorerCapability) Language() engine.Language { return c.lang }
func (c *RefactorerCapability) Kind() Kind                { return c.kind }

// CanHandle answers true when the target's codebase exposes a refactorer
// and the target shape fits the operation kind.
func (c *RefactorerCapability) CanHandle(t Target) (bool, error) {
	if t.Codebase == nil {
		return false, nil
	}
	if _, ok := t.Codebase.Refactorer(); !ok {
		return false, nil
	}
	if c.kind == KindMove {
		return t.Symbol != nil && t.Symbol.IsNamed(), nil
	}
	return true, nil
}

// Apply delegates to the engine's mutation entry point. Runs inside the
// write scope the executor opened.
func (c *RefactorerCapability) Apply(t Target, args Args) ([]string, error) {
	ref, ok := t.Codebase.Refactorer()
	if !ok {
		return nil, errors.Newf(errors.PluginNotAvailable,
			"codebase %q exposes no refactoring support", t.Codebase.Name())
	}

	switch c.kind {
	case KindMove:
		return ref.Move(t.Symbol, args.TargetPath)
	case KindExtractRange:
		return ref.ExtractRange(args.Range, args.Name)
	default:
		return nil, fmt.Errorf("unknown capability kind %q", c.kind)
	}
}
