package diag

import (
	"context"

	"crb/internal/engine"
	"crb/internal/errors"
)

// ResolveFix re-resolves a positional quick-fix id against a freshly
// collected diagnostic at the exact location.
//
// Quick-fix ids are indices into the fix list of the diagnostic that
// produced them, not stable handles; applying an id against anything but a
// just-collected diagnostic risks silently invoking the wrong fix. When
// wantMessage is non-empty, only diagnostics with that exact message are
// considered, which disambiguates overlapping findings.
func (a *Aggregator) ResolveFix(ctx context.Context, cb engine.Codebase, file string, line, column, fixID int, wantMessage string, collector Collector) (engine.Diagnostic, engine.QuickFix, error) {
	if cb.Indexing() {
		return engine.Diagnostic{}, engine.QuickFix{}, errors.Newf(errors.IndexingInProgress,
			"codebase %q is indexing; quick fixes cannot be resolved", cb.Name())
	}

	path := engine.NormalizePath(file)
	var findings []engine.Diagnostic
	err := a.arena.Read(func() error {
		var err error
		findings, err = collector.Collect(ctx, cb, path)
		return err
	})
	if err != nil {
		return engine.Diagnostic{}, engine.QuickFix{}, errors.Wrap(errors.InternalError,
			"diagnostics collection failed while resolving quick fix", err)
	}

	candidates := make([]engine.Diagnostic, 0, 1)
	for _, d := range findings {
		if !d.Covers(line, column) {
			continue
		}
		if wantMessage != "" && d.Message != wantMessage {
			continue
		}
		candidates = append(candidates, d)
	}
	if len(candidates) == 0 {
		return engine.Diagnostic{}, engine.QuickFix{}, errors.Newf(errors.ElementNotFound,
			"no diagnostic at %s:%d:%d to apply a fix to", path, line, column)
	}

	// Deterministic pick among overlapping candidates.
	sortDiagnostics(candidates)
	diagnostic := candidates[0]

	if fixID < 0 || fixID >= len(diagnostic.Fixes) {
		return engine.Diagnostic{}, engine.QuickFix{}, errors.Newf(errors.InvalidInput,
			"fix id %d is out of range; diagnostic %q offers %d fixes",
			fixID, diagnostic.Message, len(diagnostic.Fixes))
	}

	return diagnostic, diagnostic.Fixes[fixID], nil
}
