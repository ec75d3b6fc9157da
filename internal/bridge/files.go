package bridge

import (
	"sort"
	"strings"

	"crb/internal/engine"
	"crb/internal/errors"
)

// fileSet resolves a diagnostics scope to an order-stable file list.
//
// An empty path means the whole codebase. A path matching an indexed file
// means that single file. Anything else is treated as a directory prefix
// over the codebase's file list; a prefix matching nothing is
// FileNotInProject so a typo does not silently report zero diagnostics.
func fileSet(cb engine.Codebase, path string) ([]string, error) {
	if path == "" {
		return cb.Files(), nil
	}

	norm := engine.NormalizePath(path)
	if cb.ContainsFile(norm) {
		return []string{norm}, nil
	}

	prefix := strings.TrimSuffix(norm, "/") + "/"
	var files []string
	for _, f := range cb.Files() {
		if strings.HasPrefix(f, prefix) {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil, errors.Newf(errors.FileNotInProject,
			"%q matches no file or directory in codebase %q", norm, cb.Name())
	}
	sort.Strings(files)
	return files, nil
}
