// Package enginetest provides in-memory doubles for the engine collaborator
// contracts, with scripted semantics and failure injection for tests.
package enginetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"crb/internal/engine"
)

// FakeElement implements engine.Element with scripted fields.
type FakeElement struct {
	ElemName  string
	Lang      engine.Language
	Named     bool
	ParentEl  *FakeElement
	DeclEl    *FakeElement
	Loc       engine.SourceLocation
}

func (e *FakeElement) Name() string              { return e.ElemName }
func (e *FakeElement) Language() engine.Language { return e.Lang }
func (e *FakeElement) IsNamed() bool             { return e.Named }

func (e *FakeElement) Parent() (engine.Element, bool) {
	if e.ParentEl == nil {
		return nil, false
	}
	return e.ParentEl, true
}

func (e *FakeElement) Declaration() (engine.Element, bool) {
	if e.DeclEl == nil {
		return nil, false
	}
	return e.DeclEl, true
}

func (e *FakeElement) Location() engine.SourceLocation { return e.Loc }

// FakeDocument implements engine.Document over a slice of lines.
// ElementsAt scripts the smallest element per flat offset; when an offset is
// not scripted, Leaf is returned if set.
type FakeDocument struct {
	Lines      []string
	ElementsAt map[int]*FakeElement
	Leaf       *FakeElement
}

func (d *FakeDocument) LineCount() int {
	if len(d.Lines) == 0 {
		return 1
	}
	return len(d.Lines)
}

func (d *FakeDocument) LineLength(line int) (int, error) {
	if line < 1 || line > d.LineCount() {
		return 0, fmt.Errorf("line %d out of range", line)
	}
	if len(d.Lines) == 0 {
		return 0, nil
	}
	return len(d.Lines[line-1]), nil
}

func (d *FakeDocument) Offset(line, column int) (int, error) {
	if line < 1 || line > d.LineCount() {
		return 0, fmt.Errorf("line %d out of range", line)
	}
	offset := 0
	for i := 0; i < line-1; i++ {
		offset += len(d.Lines[i]) + 1
	}
	return offset + column - 1, nil
}

func (d *FakeDocument) ElementAt(offset int) (engine.Element, bool) {
	if e, ok := d.ElementsAt[offset]; ok {
		return e, true
	}
	if d.Leaf != nil {
		return d.Leaf, true
	}
	return nil, false
}

func (d *FakeDocument) Line(line int) (string, error) {
	if line < 1 || line > len(d.Lines) {
		return "", fmt.Errorf("line %d out of range", line)
	}
	return d.Lines[line-1], nil
}

// FakeRefactorer implements engine.Refactorer with scripted outcomes and
// call counting.
type FakeRefactorer struct {
	mu sync.Mutex

	RenameCalls  int
	MoveCalls    int
	ExtractCalls int
	FixCalls     int

	Affected []string
	Err      error
	PanicMsg string
}

func (r *FakeRefactorer) result() ([]string, error) {
	if r.PanicMsg != "" {
		panic(r.PanicMsg)
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Affected, nil
}

func (r *FakeRefactorer) Rename(el engine.Element, newName string) ([]string, error) {
	r.mu.Lock()
	r.RenameCalls++
	r.mu.Unlock()
	return r.result()
}

func (r *FakeRefactorer) Move(el engine.Element, targetPath string) ([]string, error) {
	r.mu.Lock()
	r.MoveCalls++
	r.mu.Unlock()
	return r.result()
}

func (r *FakeRefactorer) ExtractRange(rng engine.SourceRange, name string) ([]string, error) {
	r.mu.Lock()
	r.ExtractCalls++
	r.mu.Unlock()
	return r.result()
}

func (r *FakeRefactorer) ApplyFix(d engine.Diagnostic, fixID int) ([]string, error) {
	r.mu.Lock()
	r.FixCalls++
	r.mu.Unlock()
	return r.result()
}

// FakeCodebase implements engine.Codebase over in-memory documents.
type FakeCodebase struct {
	CodebaseName string
	Root         string
	IndexingFlag bool
	DisposedFlag bool

	Docs      map[string]*FakeDocument // normalized path -> document
	Languages map[string]engine.Language

	Ref   *FakeRefactorer
	NoRef bool

	Usages map[string][]engine.Usage // element name -> usages

	Cached map[string][]engine.Diagnostic
	Fresh  map[string][]engine.Diagnostic

	CachedErr error
	FreshErr  error
}

// NewFakeCodebase builds a codebase with the given name and root, ready to
// have documents added.
func NewFakeCodebase(name, root string) *FakeCodebase {
	return &FakeCodebase{
		CodebaseName: name,
		Root:         engine.NormalizePath(root),
		Docs:         map[string]*FakeDocument{},
		Languages:    map[string]engine.Language{},
		Usages:       map[string][]engine.Usage{},
		Cached:       map[string][]engine.Diagnostic{},
		Fresh:        map[string][]engine.Diagnostic{},
		Ref:          &FakeRefactorer{},
	}
}

// AddDocument registers a document under the codebase root and returns it.
func (c *FakeCodebase) AddDocument(path string, lines ...string) *FakeDocument {
	doc := &FakeDocument{Lines: lines, ElementsAt: map[int]*FakeElement{}}
	c.Docs[engine.NormalizePath(path)] = doc
	return doc
}

func (c *FakeCodebase) Name() string     { return c.CodebaseName }
func (c *FakeCodebase) RootPath() string { return c.Root }
func (c *FakeCodebase) Indexing() bool   { return c.IndexingFlag }
func (c *FakeCodebase) Disposed() bool   { return c.DisposedFlag }

func (c *FakeCodebase) ContainsFile(path string) bool {
	_, ok := c.Docs[engine.NormalizePath(path)]
	return ok
}

func (c *FakeCodebase) LanguageOf(path string) engine.Language {
	if lang, ok := c.Languages[engine.NormalizePath(path)]; ok {
		return lang
	}
	return engine.LangUnknown
}

func (c *FakeCodebase) Document(path string) (engine.Document, error) {
	doc, ok := c.Docs[engine.NormalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("no document for %s", path)
	}
	return doc, nil
}

func (c *FakeCodebase) Files() []string {
	files := make([]string, 0, len(c.Docs))
	for path := range c.Docs {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

func (c *FakeCodebase) Refactorer() (engine.Refactorer, bool) {
	if c.NoRef {
		return nil, false
	}
	return c.Ref, true
}

func (c *FakeCodebase) UsagesOf(el engine.Element) ([]engine.Usage, error) {
	return c.Usages[el.Name()], nil
}

func (c *FakeCodebase) CachedDiagnostics(path string) ([]engine.Diagnostic, error) {
	if c.CachedErr != nil {
		return nil, c.CachedErr
	}
	return c.Cached[engine.NormalizePath(path)], nil
}

func (c *FakeCodebase) Analyze(ctx context.Context, path string) ([]engine.Diagnostic, error) {
	if c.FreshErr != nil {
		return nil, c.FreshErr
	}
	return c.Fresh[engine.NormalizePath(path)], nil
}

// FakeHost implements engine.Host over a fixed list of codebases.
type FakeHost struct {
	Open  []engine.Codebase
	arena *engine.Arena
	once  sync.Once

	// Tx wraps the arena's transaction runner when set before first use.
	Tx engine.TransactionRunner
}

// NewFakeHost builds a host over the given codebases with a counting
// passthrough transaction runner.
func NewFakeHost(codebases ...engine.Codebase) *FakeHost {
	return &FakeHost{Open: codebases}
}

func (h *FakeHost) Codebases() []engine.Codebase { return h.Open }

func (h *FakeHost) Arena() *engine.Arena {
	h.once.Do(func() {
		h.arena = engine.NewArena(h.Tx)
	})
	return h.arena
}

// CountingTx is a TransactionRunner that counts scheduled transactions.
// Use it to assert the writer context was (or was not) invoked.
type CountingTx struct {
	calls  atomic.Int64
	Labels []string
	mu     sync.Mutex

	// Err, when set, is returned without running fn: an infrastructure
	// failure of the transaction machinery.
	Err error
}

// Runner returns the TransactionRunner func for this counter.
func (c *CountingTx) Runner() engine.TransactionRunner {
	return func(label string, fn func() error) error {
		c.calls.Add(1)
		c.mu.Lock()
		c.Labels = append(c.Labels, label)
		c.mu.Unlock()
		if c.Err != nil {
			return c.Err
		}
		return fn()
	}
}

// Calls returns the number of transactions run so far.
func (c *CountingTx) Calls() int { return int(c.calls.Load()) }

// LabelsContain reports whether any recorded label contains sub.
func (c *CountingTx) LabelsContain(sub string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.Labels {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}
