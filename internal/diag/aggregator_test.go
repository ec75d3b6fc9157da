package diag

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"crb/internal/engine"
	"crb/internal/engine/enginetest"
	"crb/internal/errors"
	"crb/internal/logging"
)

func newAggregator(t *testing.T) (*enginetest.FakeCodebase, *Aggregator) {
	t.Helper()
	cb := enginetest.NewFakeCodebase("alpha", "/p/a")
	host := enginetest.NewFakeHost(cb)
	t.Cleanup(func() { host.Arena().Close() })
	return cb, NewAggregator(host.Arena(), logging.NewNop())
}

func finding(file string, line int, sev engine.Severity, msg string) engine.Diagnostic {
	return engine.Diagnostic{
		File: file, StartLine: line, StartColumn: 1, EndLine: line, EndColumn: 10,
		Severity: sev, Message: msg,
	}
}

func TestCollect_SortsAndTruncates(t *testing.T) {
	cb, a := newAggregator(t)

	// 150 raw findings in one file: 100 errors, 50 warnings.
	var findings []engine.Diagnostic
	for i := 0; i < 50; i++ {
		findings = append(findings, finding("/p/a/big.go", 1000+i, engine.SeverityWarning, fmt.Sprintf("w%d", i)))
	}
	for i := 0; i < 100; i++ {
		findings = append(findings, finding("/p/a/big.go", i+1, engine.SeverityError, fmt.Sprintf("e%d", i)))
	}
	cb.Cached["/p/a/big.go"] = findings

	got, err := a.Collect(context.Background(), cb, []string{"/p/a/big.go"}, nil, 10, NewCachedCollector())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if len(got.Diagnostics) != 10 {
		t.Fatalf("len(Diagnostics) = %d, want 10", len(got.Diagnostics))
	}
	for i, d := range got.Diagnostics {
		if d.Severity != engine.SeverityError {
			t.Errorf("diagnostics[%d].Severity = %v, want error (errors sort first)", i, d.Severity)
		}
	}
	if got.TotalCount != 150 {
		t.Errorf("TotalCount = %d, want 150", got.TotalCount)
	}
	if !got.Truncated {
		t.Error("Truncated = false, want true")
	}
}

func TestCollect_FewFindingsNotTruncated(t *testing.T) {
	cb, a := newAggregator(t)
	cb.Cached["/p/a/x.go"] = []engine.Diagnostic{
		finding("/p/a/x.go", 9, engine.SeverityWarning, "later line"),
		finding("/p/a/x.go", 2, engine.SeverityError, "the error"),
		finding("/p/a/x.go", 4, engine.SeverityHint, "a hint"),
	}

	got, err := a.Collect(context.Background(), cb, []string{"/p/a/x.go"}, nil, 10, NewCachedCollector())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if got.TotalCount != 3 || got.Truncated {
		t.Errorf("TotalCount = %d, Truncated = %v; want 3, false", got.TotalCount, got.Truncated)
	}
	wantOrder := []engine.Severity{engine.SeverityError, engine.SeverityWarning, engine.SeverityHint}
	for i, sev := range wantOrder {
		if got.Diagnostics[i].Severity != sev {
			t.Errorf("diagnostics[%d].Severity = %v, want %v", i, got.Diagnostics[i].Severity, sev)
		}
	}
}

func TestCollect_DeterministicOrdering(t *testing.T) {
	cb, a := newAggregator(t)
	cb.Cached["/p/a/b.go"] = []engine.Diagnostic{
		finding("/p/a/b.go", 5, engine.SeverityError, "b5"),
		{File: "/p/a/b.go", StartLine: 5, StartColumn: 2, EndLine: 5, EndColumn: 9, Severity: engine.SeverityError, Message: "b5c2"},
	}
	cb.Cached["/p/a/a.go"] = []engine.Diagnostic{
		finding("/p/a/a.go", 7, engine.SeverityError, "a7"),
	}

	files := []string{"/p/a/b.go", "/p/a/a.go"}
	first, err := a.Collect(context.Background(), cb, files, nil, 10, NewCachedCollector())
	if err != nil {
		t.Fatal(err)
	}

	wantMsgs := []string{"a7", "b5", "b5c2"}
	for i, want := range wantMsgs {
		if first.Diagnostics[i].Message != want {
			t.Errorf("diagnostics[%d].Message = %q, want %q", i, first.Diagnostics[i].Message, want)
		}
	}

	for run := 0; run < 3; run++ {
		again, err := a.Collect(context.Background(), cb, files, nil, 10, NewCachedCollector())
		if err != nil {
			t.Fatal(err)
		}
		for i := range first.Diagnostics {
			if again.Diagnostics[i].Message != first.Diagnostics[i].Message {
				t.Fatalf("run %d: ordering not deterministic", run)
			}
		}
	}
}

func TestCollect_SeverityFilterAppliedBeforeThreshold(t *testing.T) {
	cb, a := newAggregator(t)

	// First file: plenty of hints (filtered out), one error.
	var noisy []engine.Diagnostic
	for i := 0; i < 40; i++ {
		noisy = append(noisy, finding("/p/a/noisy.go", i+1, engine.SeverityHint, fmt.Sprintf("h%d", i)))
	}
	noisy = append(noisy, finding("/p/a/noisy.go", 50, engine.SeverityError, "real"))
	cb.Cached["/p/a/noisy.go"] = noisy
	// Second file must still be visited: the hints did not count toward
	// the early-exit threshold.
	cb.Cached["/p/a/second.go"] = []engine.Diagnostic{finding("/p/a/second.go", 1, engine.SeverityError, "second")}

	got, err := a.Collect(context.Background(), cb,
		[]string{"/p/a/noisy.go", "/p/a/second.go"},
		[]engine.Severity{engine.SeverityError}, 10, NewCachedCollector())
	if err != nil {
		t.Fatal(err)
	}

	if got.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2 (filter applied before threshold)", got.TotalCount)
	}
	for _, d := range got.Diagnostics {
		if d.Severity != engine.SeverityError {
			t.Errorf("unexpected severity %v after filtering", d.Severity)
		}
	}
}

func TestCollect_EarlyExitStopsFileIteration(t *testing.T) {
	cb, a := newAggregator(t)

	var first []engine.Diagnostic
	for i := 0; i < 25; i++ { // >= limit*2 with limit 10
		first = append(first, finding("/p/a/first.go", i+1, engine.SeverityError, fmt.Sprintf("f%d", i)))
	}
	cb.Cached["/p/a/first.go"] = first
	cb.Cached["/p/a/unvisited.go"] = []engine.Diagnostic{finding("/p/a/unvisited.go", 1, engine.SeverityError, "never collected")}

	got, err := a.Collect(context.Background(), cb,
		[]string{"/p/a/first.go", "/p/a/unvisited.go"}, nil, 10, NewCachedCollector())
	if err != nil {
		t.Fatal(err)
	}

	if got.TotalCount != 25 {
		t.Errorf("TotalCount = %d, want 25 (second file skipped by early exit)", got.TotalCount)
	}
	for _, d := range got.Diagnostics {
		if d.File == "/p/a/unvisited.go" {
			t.Error("early exit should have skipped the second file")
		}
	}
}

func TestCollect_FreshVsCachedStrategies(t *testing.T) {
	cb, a := newAggregator(t)
	cb.Cached["/p/a/x.go"] = []engine.Diagnostic{finding("/p/a/x.go", 1, engine.SeverityWarning, "from cache")}
	cb.Fresh["/p/a/x.go"] = []engine.Diagnostic{finding("/p/a/x.go", 1, engine.SeverityError, "from analyzers")}

	cached, err := a.Collect(context.Background(), cb, []string{"/p/a/x.go"}, nil, 10, ForStrategy(false))
	if err != nil {
		t.Fatal(err)
	}
	if len(cached.Diagnostics) != 1 || cached.Diagnostics[0].Message != "from cache" {
		t.Errorf("cached strategy = %+v", cached.Diagnostics)
	}

	fresh, err := a.Collect(context.Background(), cb, []string{"/p/a/x.go"}, nil, 10, ForStrategy(true))
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh.Diagnostics) != 1 || fresh.Diagnostics[0].Message != "from analyzers" {
		t.Errorf("fresh strategy = %+v", fresh.Diagnostics)
	}
}

func TestCollect_FileFailureIsSkipped(t *testing.T) {
	cb, a := newAggregator(t)
	cb.Cached["/p/a/good.go"] = []engine.Diagnostic{finding("/p/a/good.go", 1, engine.SeverityError, "kept")}
	cb.CachedErr = stderrors.New("stale cache shard")

	// All files error out; the scan still returns an empty result, not an error.
	got, err := a.Collect(context.Background(), cb, []string{"/p/a/good.go"}, nil, 10, NewCachedCollector())
	if err != nil {
		t.Fatalf("Collect() error = %v, want nil with skipped file", err)
	}
	if got.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0", got.TotalCount)
	}
}

func TestCollect_IndexingGate(t *testing.T) {
	cb, a := newAggregator(t)
	cb.IndexingFlag = true

	_, err := a.Collect(context.Background(), cb, []string{"/p/a/x.go"}, nil, 10, NewCachedCollector())
	if errors.CodeOf(err) != errors.IndexingInProgress {
		t.Errorf("CodeOf() = %v, want IndexingInProgress", errors.CodeOf(err))
	}
}

func TestCollect_LimitCoercedToAtLeastOne(t *testing.T) {
	cb, a := newAggregator(t)
	cb.Cached["/p/a/x.go"] = []engine.Diagnostic{
		finding("/p/a/x.go", 1, engine.SeverityError, "a"),
		finding("/p/a/x.go", 2, engine.SeverityError, "b"),
	}

	got, err := a.Collect(context.Background(), cb, []string{"/p/a/x.go"}, nil, 0, NewCachedCollector())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Diagnostics) != 1 {
		t.Errorf("len(Diagnostics) = %d, want 1", len(got.Diagnostics))
	}
}
