// Package manifest loads the capability manifest: a static declaration of
// which languages the bridge supports and which optional components
// implement which operations. The registry is populated from this file once
// at process start; there is no runtime discovery.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"crb/internal/capability"
	"crb/internal/engine"
	"crb/internal/logging"
)

// Manifest is the parsed capability manifest.
type Manifest struct {
	Languages []LanguageDecl `yaml:"languages"`
}

// LanguageDecl declares one supported language and the operations its
// component provides.
type LanguageDecl struct {
	// Name is the language tag, matching the engine's classification.
	Name string `yaml:"name"`

	// Plugin names the optional component implementing the operations.
	Plugin string `yaml:"plugin"`

	// Operations lists the capability kinds the plugin provides.
	Operations []string `yaml:"operations"`

	// Loaded marks whether the component is currently present. Unloaded
	// declarations keep the language in the supported set so callers see
	// PluginNotAvailable rather than UnsupportedLanguage.
	Loaded bool `yaml:"loaded"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse parses manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate rejects manifests with missing names or unknown operation kinds.
func (m *Manifest) Validate() error {
	for _, lang := range m.Languages {
		if lang.Name == "" {
			return fmt.Errorf("manifest: language with empty name")
		}
		for _, op := range lang.Operations {
			if _, ok := capability.ParseKind(op); !ok {
				return fmt.Errorf("manifest: language %q declares unknown operation %q", lang.Name, op)
			}
		}
	}
	return nil
}

// Populate fills a registry from the manifest. Every declared pair is
// recorded as supported; pairs whose plugin is loaded are additionally
// bound to an engine-backed implementation.
func (m *Manifest) Populate(reg *capability.Registry, logger *logging.Logger) {
	for _, decl := range m.Languages {
		lang := engine.Language(decl.Name)
		for _, op := range decl.Operations {
			kind, _ := capability.ParseKind(op)
			reg.Declare(lang, kind)
			if decl.Loaded {
				reg.Register(capability.NewRefactorerCapability(lang, kind))
			} else {
				logger.Info("Capability declared but component not loaded", map[string]interface{}{
					"language": decl.Name,
					"kind":     op,
					"plugin":   decl.Plugin,
				})
			}
		}
	}
}
