package diag

import (
	"context"
	"testing"

	"crb/internal/engine"
	"crb/internal/errors"
)

func fixable(file string, line int, msg string, fixes ...engine.QuickFix) engine.Diagnostic {
	return engine.Diagnostic{
		File: file, StartLine: line, StartColumn: 1, EndLine: line, EndColumn: 20,
		Severity: engine.SeverityWarning, Message: msg, Fixes: fixes,
	}
}

func TestResolveFix_PicksFixByPosition(t *testing.T) {
	cb, a := newAggregator(t)
	cb.Fresh["/p/a/x.go"] = []engine.Diagnostic{
		fixable("/p/a/x.go", 3, "unused import",
			engine.QuickFix{ID: 0, Name: "Remove import"},
			engine.QuickFix{ID: 1, Name: "Suppress"},
		),
	}

	d, fix, err := a.ResolveFix(context.Background(), cb, "/p/a/x.go", 3, 5, 1, "", NewFreshCollector())
	if err != nil {
		t.Fatalf("ResolveFix() error = %v", err)
	}
	if d.Message != "unused import" || fix.Name != "Suppress" {
		t.Errorf("ResolveFix() = (%q, %q)", d.Message, fix.Name)
	}
}

func TestResolveFix_MessageDisambiguatesOverlap(t *testing.T) {
	cb, a := newAggregator(t)
	cb.Fresh["/p/a/x.go"] = []engine.Diagnostic{
		fixable("/p/a/x.go", 3, "shadowed variable", engine.QuickFix{ID: 0, Name: "Rename"}),
		fixable("/p/a/x.go", 3, "unused variable", engine.QuickFix{ID: 0, Name: "Remove"}),
	}

	d, fix, err := a.ResolveFix(context.Background(), cb, "/p/a/x.go", 3, 5, 0, "unused variable", NewFreshCollector())
	if err != nil {
		t.Fatalf("ResolveFix() error = %v", err)
	}
	if d.Message != "unused variable" || fix.Name != "Remove" {
		t.Errorf("ResolveFix() = (%q, %q)", d.Message, fix.Name)
	}
}

func TestResolveFix_OverlapWithoutMessageIsDeterministic(t *testing.T) {
	cb, a := newAggregator(t)
	// Same span, different columns; the lower column wins every time.
	later := fixable("/p/a/x.go", 3, "later", engine.QuickFix{ID: 0, Name: "L"})
	later.StartColumn = 4
	cb.Fresh["/p/a/x.go"] = []engine.Diagnostic{
		later,
		fixable("/p/a/x.go", 3, "earlier", engine.QuickFix{ID: 0, Name: "E"}),
	}

	for run := 0; run < 3; run++ {
		d, _, err := a.ResolveFix(context.Background(), cb, "/p/a/x.go", 3, 10, 0, "", NewFreshCollector())
		if err != nil {
			t.Fatal(err)
		}
		if d.Message != "earlier" {
			t.Fatalf("run %d: picked %q, want %q", run, d.Message, "earlier")
		}
	}
}

func TestResolveFix_NoDiagnosticAtLocation(t *testing.T) {
	cb, a := newAggregator(t)
	cb.Fresh["/p/a/x.go"] = []engine.Diagnostic{
		fixable("/p/a/x.go", 3, "unused import", engine.QuickFix{ID: 0, Name: "Remove"}),
	}

	_, _, err := a.ResolveFix(context.Background(), cb, "/p/a/x.go", 99, 1, 0, "", NewFreshCollector())
	if errors.CodeOf(err) != errors.ElementNotFound {
		t.Errorf("CodeOf() = %v, want ElementNotFound", errors.CodeOf(err))
	}
}

func TestResolveFix_FixIDOutOfRange(t *testing.T) {
	cb, a := newAggregator(t)
	cb.Fresh["/p/a/x.go"] = []engine.Diagnostic{
		fixable("/p/a/x.go", 3, "unused import", engine.QuickFix{ID: 0, Name: "Remove"}),
	}

	for _, id := range []int{-1, 1, 7} {
		_, _, err := a.ResolveFix(context.Background(), cb, "/p/a/x.go", 3, 5, id, "", NewFreshCollector())
		if errors.CodeOf(err) != errors.InvalidInput {
			t.Errorf("fixID %d: CodeOf() = %v, want InvalidInput", id, errors.CodeOf(err))
		}
	}
}

func TestResolveFix_IndexingGate(t *testing.T) {
	cb, a := newAggregator(t)
	cb.IndexingFlag = true

	_, _, err := a.ResolveFix(context.Background(), cb, "/p/a/x.go", 3, 5, 0, "", NewFreshCollector())
	if errors.CodeOf(err) != errors.IndexingInProgress {
		t.Errorf("CodeOf() = %v, want IndexingInProgress", errors.CodeOf(err))
	}
}
