package workspace

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// File is the workspace file (crb.toml): the list of codebases the bridge
// should ask the host to open at startup.
type File struct {
	// Codebases are the source trees to open, in declaration order.
	Codebases []CodebaseDecl `toml:"codebase"`
}

// CodebaseDecl is one [[codebase]] entry in the workspace file.
type CodebaseDecl struct {
	// Name is the codebase's display name; must be unique in the file.
	Name string `toml:"name"`

	// Root is the codebase's root directory.
	Root string `toml:"root"`
}

// LoadFile reads and validates a workspace file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace file: %w", err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse workspace file %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("workspace file %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks names are present and unique and roots are present.
func (f *File) Validate() error {
	if len(f.Codebases) == 0 {
		return fmt.Errorf("no codebases declared")
	}
	seen := map[string]bool{}
	for i, cb := range f.Codebases {
		if cb.Name == "" {
			return fmt.Errorf("codebase %d: missing name", i)
		}
		if cb.Root == "" {
			return fmt.Errorf("codebase %q: missing root", cb.Name)
		}
		if seen[cb.Name] {
			return fmt.Errorf("duplicate codebase name %q", cb.Name)
		}
		seen[cb.Name] = true
	}
	return nil
}
