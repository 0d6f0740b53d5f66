package params

import "errors"

// ErrPresetNotFound is returned by Registry.Lookup when no preset is
// registered under the requested name.
var ErrPresetNotFound = errors.New("params: preset not found")

// MaxPresetNameLen is the longest name a preset may be registered
// under.
const MaxPresetNameLen = 31

// Registry is a name-to-parameter-set mapping. The original daemon
// keyed this off a djb2 hash into 64 chained buckets; a Go map gives
// the same exact-match, case-sensitive semantics without needing to
// hand-roll hashing, so that's what backs it here.
type Registry struct {
	presets map[string]Set
}

// NewRegistry returns a registry populated with the built-in
// presets required after initialization: window, panel, hud, tooltip.
func NewRegistry() *Registry {
	r := &Registry{presets: make(map[string]Set, 8)}
	for name, set := range builtinPresets() {
		r.presets[name] = set
	}
	return r
}

// builtinPresets returns the four presets every registry must carry
// after initialization. Fields not called out below take defaults().
func builtinPresets() map[string]Set {
	mk := func(fn func(*Set)) Set {
		s := Default()
		fn(&s)
		return s
	}
	return map[string]Set{
		"window": mk(func(s *Set) {
			s.Passes = 3
			s.Radius = 8.0
			s.Saturation = 1.15
		}),
		"panel": mk(func(s *Set) {
			s.Passes = 2
			s.Radius = 4.0
			s.Brightness = 1.05
		}),
		"hud": mk(func(s *Set) {
			s.Passes = 4
			s.Radius = 12.0
			s.Saturation = 1.2
			s.Vibrancy = 0.2
		}),
		"tooltip": mk(func(s *Set) {
			s.Passes = 1
			s.Radius = 2.0
		}),
	}
}

// Put registers set under name, overwriting any existing preset with
// that name. Names longer than MaxPresetNameLen are rejected.
func (r *Registry) Put(name string, set Set) error {
	if len(name) == 0 || len(name) > MaxPresetNameLen {
		return errors.New("params: preset name length out of bounds")
	}
	if err := Validate(set); err != nil {
		return err
	}
	r.presets[name] = set
	return nil
}

// Lookup returns the parameter set registered under name, or
// ErrPresetNotFound.
func (r *Registry) Lookup(name string) (Set, error) {
	set, ok := r.presets[name]
	if !ok {
		return Set{}, ErrPresetNotFound
	}
	return set, nil
}

// Resolve implements the parameter resolution order: a named preset
// found in the registry wins; otherwise an explicit override; otherwise
// the registry's configured defaults; otherwise the hardcoded
// defaults.
//
// configDefaults is nil when the daemon configuration carries no
// default block.
func (r *Registry) Resolve(presetName string, override *Set, configDefaults *Set) Set {
	if presetName != "" {
		if set, err := r.Lookup(presetName); err == nil {
			return set
		}
	}
	if override != nil {
		return *override
	}
	if configDefaults != nil {
		return *configDefaults
	}
	return Default()
}
