package filehost

import (
	"os"
	"path/filepath"
	"testing"

	"crb/internal/engine"
	"crb/internal/errors"
	"crb/internal/logging"
	"crb/internal/resolve"
	"crb/internal/workspace"
)

func newHost(t *testing.T) (*Host, string) {
	t.Helper()

	root := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("src/Widget.java", "class Widget {\n}\n")
	write("src/util/Helper.kt", "object Helper\n")
	write("README.md", "not source\n")
	write(".git/config", "ignored\n")
	write("node_modules/dep/index.ts", "ignored\n")

	host, err := New(&workspace.File{Codebases: []workspace.CodebaseDecl{
		{Name: "demo", Root: root},
	}}, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(host.Close)
	return host, engine.NormalizePath(root)
}

func TestOpen_ScansOnlySourceFiles(t *testing.T) {
	host, root := newHost(t)

	cbs := host.Codebases()
	if len(cbs) != 1 {
		t.Fatalf("len(Codebases()) = %d, want 1", len(cbs))
	}
	cb := cbs[0]
	if cb.Name() != "demo" || cb.RootPath() != root {
		t.Errorf("codebase = %s (%s)", cb.Name(), cb.RootPath())
	}

	files := cb.Files()
	if len(files) != 2 {
		t.Fatalf("Files() = %v, want the two source files", files)
	}
	if !cb.ContainsFile(root + "/src/Widget.java") {
		t.Error("ContainsFile(Widget.java) = false")
	}
	if cb.ContainsFile(root + "/README.md") {
		t.Error("ContainsFile(README.md) = true, want skipped")
	}
	if cb.ContainsFile(root + "/node_modules/dep/index.ts") {
		t.Error("node_modules was scanned")
	}
}

func TestLanguageOf(t *testing.T) {
	host, root := newHost(t)
	cb := host.Codebases()[0]

	if got := cb.LanguageOf(root + "/src/Widget.java"); got != engine.LangJava {
		t.Errorf("LanguageOf(java) = %v", got)
	}
	if got := cb.LanguageOf(root + "/src/util/Helper.kt"); got != engine.LangKotlin {
		t.Errorf("LanguageOf(kt) = %v", got)
	}
	if got := cb.LanguageOf(root + "/README.md"); got != engine.LangUnknown {
		t.Errorf("LanguageOf(md) = %v", got)
	}
}

func TestDocument_CoordinateQueries(t *testing.T) {
	host, root := newHost(t)
	cb := host.Codebases()[0]

	doc, err := cb.Document(root + "/src/Widget.java")
	if err != nil {
		t.Fatal(err)
	}

	// "class Widget {\n}\n" splits into three lines, the last empty.
	if got := doc.LineCount(); got != 3 {
		t.Errorf("LineCount() = %d, want 3", got)
	}
	if got, err := doc.LineLength(1); err != nil || got != 14 {
		t.Errorf("LineLength(1) = (%d, %v), want 14", got, err)
	}
	if got, err := doc.Line(2); err != nil || got != "}" {
		t.Errorf("Line(2) = (%q, %v)", got, err)
	}
	if got, err := doc.Offset(2, 1); err != nil || got != 15 {
		t.Errorf("Offset(2,1) = (%d, %v), want 15", got, err)
	}
}

func TestSemanticQueriesReportTaxonomyErrors(t *testing.T) {
	host, root := newHost(t)
	cb := host.Codebases()[0]

	// No model: element resolution is ElementNotFound, not a crash.
	r := resolve.NewResolver(host.Arena(), logging.NewNop())
	_, err := r.ResolveElement(cb, root+"/src/Widget.java", 1, 7)
	if errors.CodeOf(err) != errors.ElementNotFound {
		t.Errorf("CodeOf() = %v, want ElementNotFound", errors.CodeOf(err))
	}

	if _, ok := cb.Refactorer(); ok {
		t.Error("Refactorer() = ok, want no support")
	}
}

func TestOpen_MissingRootFails(t *testing.T) {
	_, err := New(&workspace.File{Codebases: []workspace.CodebaseDecl{
		{Name: "ghost", Root: "/does/not/exist"},
	}}, logging.NewNop())
	if err == nil {
		t.Fatal("New() = nil error, want failure for missing root")
	}
}
