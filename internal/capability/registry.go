package capability

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"crb/internal/engine"
	"crb/internal/errors"
	"crb/internal/logging"
)

// Pair is one (language, kind) coordinate, used by the status surface.
type Pair struct {
	Language engine.Language `json:"language"`
	Kind     Kind            `json:"kind"`
	// Available is true when an implementation is registered, false when
	// the pair is only declared by the manifest.
	Available bool `json:"available"`
}

// registryState is the immutable snapshot readers see. Registration copies
// and swaps it; reads never lock.
type registryState struct {
	impls    map[engine.Language]map[Kind][]Capability
	declared map[engine.Language]map[Kind]bool
}

func (s *registryState) clone() *registryState {
	next := &registryState{
		impls:    make(map[engine.Language]map[Kind][]Capability, len(s.impls)),
		declared: make(map[engine.Language]map[Kind]bool, len(s.declared)),
	}
	for lang, byKind := range s.impls {
		m := make(map[Kind][]Capability, len(byKind))
		for kind, caps := range byKind {
			m[kind] = append([]Capability(nil), caps...)
		}
		next.impls[lang] = m
	}
	for lang, byKind := range s.declared {
		m := make(map[Kind]bool, len(byKind))
		for kind, v := range byKind {
			m[kind] = v
		}
		next.declared[lang] = m
	}
	return next
}

// Registry holds the capability table. Registrations happen at startup and
// are append-only; reads take no locks (copy-on-registration).
type Registry struct {
	state  atomic.Pointer[registryState]
	write  sync.Mutex
	logger *logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *logging.Logger) *Registry {
	r := &Registry{logger: logger}
	r.state.Store(&registryState{
		impls:    map[engine.Language]map[Kind][]Capability{},
		declared: map[engine.Language]map[Kind]bool{},
	})
	return r
}

// Declare records that a (language, kind) pair is supported in principle,
// whether or not an implementation ever registers. Declared-but-unbound
// pairs report PluginNotAvailable instead of UnsupportedLanguage.
func (r *Registry) Declare(lang engine.Language, kind Kind) {
	r.write.Lock()
	defer r.write.Unlock()

	next := r.state.Load().clone()
	if next.declared[lang] == nil {
		next.declared[lang] = map[Kind]bool{}
	}
	next.declared[lang][kind] = true
	r.state.Store(next)
}

// Register binds an implementation. Registration order is preserved:
// FindForTarget asks candidates in the order they registered.
func (r *Registry) Register(c Capability) {
	r.write.Lock()
	defer r.write.Unlock()

	next := r.state.Load().clone()
	if next.impls[c.Language()] == nil {
		next.impls[c.Language()] = map[Kind][]Capability{}
	}
	next.impls[c.Language()][c.Kind()] = append(next.impls[c.Language()][c.Kind()], c)
	if next.declared[c.Language()] == nil {
		next.declared[c.Language()] = map[Kind]bool{}
	}
	next.declared[c.Language()][c.Kind()] = true
	r.state.Store(next)

	r.logger.Info("Registered capability", map[string]interface{}{
		"language": c.Language(),
		"kind":     c.Kind(),
	})
}

// Find returns the first registered capability for (language, kind).
// Absence is not an error at registry level.
func (r *Registry) Find(lang engine.Language, kind Kind) (Capability, bool) {
	caps := r.state.Load().impls[lang][kind]
	if len(caps) == 0 {
		return nil, false
	}
	return caps[0], true
}

// FindForTarget returns the first capability for the target's language
// whose CanHandle predicate answers true. A predicate that returns an
// error or panics is logged and treated as a decline, never propagated.
func (r *Registry) FindForTarget(t Target, kind Kind) (Capability, bool) {
	for _, c := range r.state.Load().impls[t.Language][kind] {
		ok, err := safeCanHandle(c, t)
		if err != nil {
			r.logger.Warn("Capability predicate failed; treating as decline", map[string]interface{}{
				"language": t.Language,
				"kind":     kind,
				"error":    err.Error(),
			})
			continue
		}
		if ok {
			return c, true
		}
	}
	return nil, false
}

// MissingError explains why no capability served (language, kind):
// UnsupportedLanguage when the language is outside the supported set,
// PluginNotAvailable when it is declared but its optional component is not
// currently loaded.
func (r *Registry) MissingError(lang engine.Language, kind Kind) error {
	if r.state.Load().declared[lang][kind] {
		return errors.Newf(errors.PluginNotAvailable,
			"%s is supported, but the component implementing %s for it is not loaded", lang, kind)
	}
	return errors.Newf(errors.UnsupportedLanguage,
		"no %s support is available for language %q", kind, lang)
}

// Pairs lists every declared (language, kind) pair with its availability,
// sorted for deterministic status output.
func (r *Registry) Pairs() []Pair {
	state := r.state.Load()
	out := []Pair{}
	for lang, byKind := range state.declared {
		for kind := range byKind {
			out = append(out, Pair{
				Language:  lang,
				Kind:      kind,
				Available: len(state.impls[lang][kind]) > 0,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Language != out[j].Language {
			return out[i].Language < out[j].Language
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func safeCanHandle(c Capability, t Target) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			err = fmt.Errorf("predicate panicked: %v", rec)
		}
	}()
	return c.CanHandle(t)
}
