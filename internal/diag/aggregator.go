package diag

import (
	"context"
	"sort"

	"crb/internal/engine"
	"crb/internal/errors"
	"crb/internal/logging"
)

// overCollectFactor bounds collection cost: iteration stops once
// limit×overCollectFactor post-filter findings are gathered, which leaves
// enough candidates to sort accurately by severity before truncating.
const overCollectFactor = 2

// Result is one aggregation outcome. TotalCount counts every post-filter
// finding gathered; Truncated reports whether any were cut by the limit.
type Result struct {
	Diagnostics []engine.Diagnostic `json:"diagnostics"`
	TotalCount  int                 `json:"totalCount"`
	Truncated   bool                `json:"truncated"`
}

// Aggregator iterates candidate files, delegates per-file collection to a
// strategy, and produces a deterministically ordered, truncated result.
// It never constructs file sets itself; callers hand it an already
// resolved, order-stable list.
type Aggregator struct {
	arena  *engine.Arena
	logger *logging.Logger
}

// NewAggregator creates an Aggregator over the given arena.
func NewAggregator(arena *engine.Arena, logger *logging.Logger) *Aggregator {
	return &Aggregator{arena: arena, logger: logger}
}

// Collect gathers diagnostics for files from cb using the given collector.
//
// The severity filter (nil means all) applies per finding before the
// early-exit threshold, so the threshold counts only findings that can
// appear in the result. Ordering is stable: severity rank ascending
// (errors first), then file, line, column.
func (a *Aggregator) Collect(ctx context.Context, cb engine.Codebase, files []string, severities []engine.Severity, limit int, collector Collector) (Result, error) {
	if cb.Indexing() {
		return Result{}, errors.Newf(errors.IndexingInProgress,
			"codebase %q is indexing; diagnostics would be unreliable", cb.Name())
	}
	if limit < 1 {
		limit = 1
	}

	wanted := severitySet(severities)
	collected := make([]engine.Diagnostic, 0, limit*overCollectFactor)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return Result{}, errors.Wrap(errors.InternalError, "diagnostics collection canceled", err)
		}

		var findings []engine.Diagnostic
		err := a.arena.Read(func() error {
			var err error
			findings, err = collector.Collect(ctx, cb, engine.NormalizePath(file))
			return err
		})
		if err != nil {
			// One unreadable file must not sink the whole scan.
			a.logger.Warn("Diagnostics collection failed for file", map[string]interface{}{
				"file":     file,
				"strategy": collector.Strategy(),
				"error":    err.Error(),
			})
			continue
		}

		for _, d := range findings {
			if wanted != nil && !wanted[d.Severity] {
				continue
			}
			collected = append(collected, d)
		}

		if len(collected) >= limit*overCollectFactor {
			break
		}
	}

	sortDiagnostics(collected)

	total := len(collected)
	truncated := total > limit
	if truncated {
		collected = collected[:limit]
	}

	return Result{Diagnostics: collected, TotalCount: total, Truncated: truncated}, nil
}

// sortDiagnostics orders findings by (severity rank, file, line, column),
// stably, so identical inputs always produce identical output.
func sortDiagnostics(ds []engine.Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Severity.Rank() != ds[j].Severity.Rank() {
			return ds[i].Severity.Rank() < ds[j].Severity.Rank()
		}
		if ds[i].File != ds[j].File {
			return ds[i].File < ds[j].File
		}
		if ds[i].StartLine != ds[j].StartLine {
			return ds[i].StartLine < ds[j].StartLine
		}
		return ds[i].StartColumn < ds[j].StartColumn
	})
}

func severitySet(severities []engine.Severity) map[engine.Severity]bool {
	if len(severities) == 0 {
		return nil
	}
	set := make(map[engine.Severity]bool, len(severities))
	for _, s := range severities {
		set[s] = true
	}
	return set
}
