// Package filehost is a read-only engine host over local directories. It
// serves coordinate and text queries straight from disk and carries no
// language semantics: element lookups come back empty and no refactorer is
// exposed, so every semantic operation reports its taxonomy error instead
// of pretending. It is what the bridge runs against when no analysis engine
// is attached.
package filehost

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"crb/internal/engine"
	"crb/internal/logging"
	"crb/internal/workspace"
)

var languageByExt = map[string]engine.Language{
	".java": engine.LangJava,
	".kt":   engine.LangKotlin,
	".kts":  engine.LangKotlin,
	".py":   engine.LangPython,
	".go":   engine.LangGo,
	".ts":   engine.LangTypeScript,
	".tsx":  engine.LangTypeScript,
}

// skipDirs are directory names never scanned for source files.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"dist":         true,
}

// Host implements engine.Host over the codebases a workspace file declares.
type Host struct {
	codebases []engine.Codebase
	arena     *engine.Arena
	logger    *logging.Logger
}

// New opens every codebase the workspace file declares. A root that cannot
// be scanned fails the whole open; a half-opened workspace would make
// project disambiguation misleading.
func New(ws *workspace.File, logger *logging.Logger) (*Host, error) {
	h := &Host{logger: logger}
	for _, decl := range ws.Codebases {
		cb, err := open(decl.Name, decl.Root)
		if err != nil {
			return nil, err
		}
		logger.Info("Opened codebase", map[string]interface{}{
			"name":  cb.Name(),
			"root":  cb.RootPath(),
			"files": len(cb.Files()),
		})
		h.codebases = append(h.codebases, cb)
	}
	// No engine means no transactional machinery; the writer context still
	// serializes writes, the scope label is only logged.
	h.arena = engine.NewArena(func(label string, fn func() error) error {
		logger.Debug("Write scope", map[string]interface{}{"label": label})
		return fn()
	})
	return h, nil
}

func (h *Host) Codebases() []engine.Codebase { return h.codebases }
func (h *Host) Arena() *engine.Arena         { return h.arena }

// Close stops the arena's writer goroutine.
func (h *Host) Close() { h.arena.Close() }

// codebase is one scanned directory tree.
type codebase struct {
	name  string
	root  string
	files []string // normalized absolute paths, sorted

	mu   sync.Mutex
	docs map[string]*document
}

func open(name, root string) (*codebase, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	cb := &codebase{
		name: name,
		root: engine.NormalizePath(abs),
		docs: map[string]*document{},
	}

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != abs && (strings.HasPrefix(d.Name(), ".") || skipDirs[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := languageByExt[filepath.Ext(d.Name())]; ok {
			cb.files = append(cb.files, engine.NormalizePath(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(cb.files)
	return cb, nil
}

func (c *codebase) Name() string     { return c.name }
func (c *codebase) RootPath() string { return c.root }
func (c *codebase) Indexing() bool   { return false }
func (c *codebase) Disposed() bool   { return false }

func (c *codebase) ContainsFile(path string) bool {
	norm := engine.NormalizePath(path)
	i := sort.SearchStrings(c.files, norm)
	return i < len(c.files) && c.files[i] == norm
}

func (c *codebase) LanguageOf(path string) engine.Language {
	if lang, ok := languageByExt[filepath.Ext(path)]; ok {
		return lang
	}
	return engine.LangUnknown
}

func (c *codebase) Files() []string {
	return append([]string(nil), c.files...)
}

// Document reads and caches the file's text. The cache is never
// invalidated; the filehost serves one bridge session over a static tree.
func (c *codebase) Document(path string) (engine.Document, error) {
	norm := engine.NormalizePath(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if doc, ok := c.docs[norm]; ok {
		return doc, nil
	}

	data, err := os.ReadFile(norm)
	if err != nil {
		return nil, err
	}
	doc := newDocument(string(data))
	c.docs[norm] = doc
	return doc, nil
}

// Refactorer reports no support: without an engine there is nothing that
// can mutate source safely.
func (c *codebase) Refactorer() (engine.Refactorer, bool) { return nil, false }

func (c *codebase) UsagesOf(el engine.Element) ([]engine.Usage, error) {
	return []engine.Usage{}, nil
}

func (c *codebase) CachedDiagnostics(path string) ([]engine.Diagnostic, error) {
	return []engine.Diagnostic{}, nil
}

func (c *codebase) Analyze(ctx context.Context, path string) ([]engine.Diagnostic, error) {
	return []engine.Diagnostic{}, nil
}

// document is a line-indexed view of one file's text.
type document struct {
	lines []string
}

func newDocument(text string) *document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &document{lines: strings.Split(text, "\n")}
}

func (d *document) LineCount() int { return len(d.lines) }

func (d *document) LineLength(line int) (int, error) {
	if line < 1 || line > len(d.lines) {
		return 0, os.ErrInvalid
	}
	return len(d.lines[line-1]), nil
}

func (d *document) Offset(line, column int) (int, error) {
	if line < 1 || line > len(d.lines) {
		return 0, os.ErrInvalid
	}
	offset := 0
	for i := 0; i < line-1; i++ {
		offset += len(d.lines[i]) + 1
	}
	return offset + column - 1, nil
}

// ElementAt always answers no element: the filehost has no model.
func (d *document) ElementAt(offset int) (engine.Element, bool) { return nil, false }

func (d *document) Line(line int) (string, error) {
	if line < 1 || line > len(d.lines) {
		return "", os.ErrInvalid
	}
	return d.lines[line-1], nil
}
