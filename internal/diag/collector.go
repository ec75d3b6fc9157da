// Package diag collects, filters, sorts, and truncates diagnostic findings
// from the engine's two collection strategies.
package diag

import (
	"context"

	"crb/internal/engine"
)

// Strategy names a collection strategy in requests.
type Strategy string

const (
	// StrategyCached reads whatever background analysis already computed.
	// Fast and free, but empty for files never analyzed.
	StrategyCached Strategy = "cached"
	// StrategyFresh runs the engine's local analyzers on demand. Slower,
	// comprehensive, works for files never opened.
	StrategyFresh Strategy = "fresh"
)

// Collector is one interchangeable per-file collection strategy.
type Collector interface {
	// Collect returns the findings for one file.
	Collect(ctx context.Context, cb engine.Codebase, file string) ([]engine.Diagnostic, error)

	// Strategy identifies the collector for logs and results.
	Strategy() Strategy
}

// cachedCollector reads the engine's background-analysis results.
type cachedCollector struct{}

// NewCachedCollector returns the cached strategy.
func NewCachedCollector() Collector { return cachedCollector{} }

func (cachedCollector) Collect(ctx context.Context, cb engine.Codebase, file string) ([]engine.Diagnostic, error) {
	return cb.CachedDiagnostics(file)
}

func (cachedCollector) Strategy() Strategy { return StrategyCached }

// freshCollector runs local analyzers on demand.
type freshCollector struct{}

// NewFreshCollector returns the fresh strategy.
func NewFreshCollector() Collector { return freshCollector{} }

func (freshCollector) Collect(ctx context.Context, cb engine.Codebase, file string) ([]engine.Diagnostic, error) {
	return cb.Analyze(ctx, file)
}

func (freshCollector) Strategy() Strategy { return StrategyFresh }

// ForStrategy picks the collector for a request flag: fresh when runFresh
// is set, cached otherwise.
func ForStrategy(runFresh bool) Collector {
	if runFresh {
		return NewFreshCollector()
	}
	return NewCachedCollector()
}
