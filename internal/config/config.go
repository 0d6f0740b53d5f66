// Package config loads the daemon's JSON configuration file: socket
// path, log level, per-client node cap, default parameter set, and
// named presets.
//
// The on-disk shape is JSON rather than the TOML the original daemon
// used — no TOML, YAML, or other config-parsing library is grounded
// anywhere in the example pack this daemon was built from, so the
// standard library's encoding/json is used here by necessity; see
// DESIGN.md.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wlblur/wlblurd/internal/params"
)

// Config is the validated, in-memory daemon configuration.
type Config struct {
	SocketPath        string
	LogLevel          string
	MaxNodesPerClient int
	Defaults          *params.Set
	Presets           map[string]params.Set
}

// file is the on-disk JSON shape. Numeric param fields are pointers so
// omitted fields can fall back to params.Default() field-by-field
// rather than to Go's zero value.
type file struct {
	SocketPath        string                `json:"socket_path"`
	LogLevel          string                `json:"log_level"`
	MaxNodesPerClient int                   `json:"max_nodes_per_client"`
	Defaults          *paramFields          `json:"defaults"`
	Presets           map[string]paramFields `json:"presets"`
}

type paramFields struct {
	Passes           *uint32  `json:"num_passes"`
	Radius           *float32 `json:"radius"`
	Brightness       *float32 `json:"brightness"`
	Contrast         *float32 `json:"contrast"`
	Saturation       *float32 `json:"saturation"`
	Noise            *float32 `json:"noise"`
	Vibrancy         *float32 `json:"vibrancy"`
	VibrancyDarkness *float32 `json:"vibrancy_darkness"`
	TintR            *float32 `json:"tint_r"`
	TintG            *float32 `json:"tint_g"`
	TintB            *float32 `json:"tint_b"`
	TintA            *float32 `json:"tint_a"`
}

func (pf paramFields) resolve() params.Set {
	s := params.Default()
	if pf.Passes != nil {
		s.Passes = *pf.Passes
	}
	if pf.Radius != nil {
		s.Radius = *pf.Radius
	}
	if pf.Brightness != nil {
		s.Brightness = *pf.Brightness
	}
	if pf.Contrast != nil {
		s.Contrast = *pf.Contrast
	}
	if pf.Saturation != nil {
		s.Saturation = *pf.Saturation
	}
	if pf.Noise != nil {
		s.Noise = *pf.Noise
	}
	if pf.Vibrancy != nil {
		s.Vibrancy = *pf.Vibrancy
	}
	if pf.VibrancyDarkness != nil {
		s.VibrancyDarkness = *pf.VibrancyDarkness
	}
	if pf.TintR != nil {
		s.TintR = *pf.TintR
	}
	if pf.TintG != nil {
		s.TintG = *pf.TintG
	}
	if pf.TintB != nil {
		s.TintB = *pf.TintB
	}
	if pf.TintA != nil {
		s.TintA = *pf.TintA
	}
	return s
}

// DefaultSearchPath returns the paths, in priority order, Load tries
// when path is empty: $XDG_CONFIG_HOME/wlblurd/config.json, then
// ~/.config/wlblurd/config.json, then /etc/wlblurd/config.json.
func DefaultSearchPath() []string {
	var out []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, "wlblurd", "config.json"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, ".config", "wlblurd", "config.json"))
	}
	out = append(out, "/etc/wlblurd/config.json")
	return out
}

// Load reads and validates the configuration at path. If path is
// empty, it tries DefaultSearchPath in order and returns
// DefaultConfig() if none exist.
//
// Load never mutates a previously loaded Config; callers swap pointers
// on success so a reload failure leaves the running configuration
// untouched.
func Load(path string) (*Config, error) {
	if path == "" {
		for _, candidate := range DefaultSearchPath() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return DefaultConfig(), nil
		}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if f.SocketPath != "" {
		cfg.SocketPath = f.SocketPath
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.MaxNodesPerClient > 0 {
		cfg.MaxNodesPerClient = f.MaxNodesPerClient
	}
	if f.Defaults != nil {
		d := f.Defaults.resolve()
		cfg.Defaults = &d
	}
	if len(f.Presets) > 0 {
		cfg.Presets = make(map[string]params.Set, len(f.Presets))
		for name, pf := range f.Presets {
			cfg.Presets[name] = pf.resolve()
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfig returns the configuration a daemon runs with when no
// file is found.
func DefaultConfig() *Config {
	return &Config{
		SocketPath:        DefaultSocketPath(),
		LogLevel:          "info",
		MaxNodesPerClient: 100,
	}
}

// DefaultSocketPath mirrors spec's socket resolution rule:
// $XDG_RUNTIME_DIR/wlblur.sock, else /tmp/wlblur.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "wlblur.sock")
	}
	return "/tmp/wlblur.sock"
}

// Validate checks every numeric field against the ranges in §3,
// including every preset and the default block when present.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log_level %q", c.LogLevel)
	}
	if c.MaxNodesPerClient < 1 {
		return fmt.Errorf("config: max_nodes_per_client must be positive, got %d", c.MaxNodesPerClient)
	}
	if c.Defaults != nil {
		if err := params.Validate(*c.Defaults); err != nil {
			return fmt.Errorf("config: defaults: %w", err)
		}
	}
	for name, p := range c.Presets {
		if len(name) > params.MaxPresetNameLen {
			return fmt.Errorf("config: preset name %q exceeds %d characters", name, params.MaxPresetNameLen)
		}
		if err := params.Validate(p); err != nil {
			return fmt.Errorf("config: preset %q: %w", name, err)
		}
	}
	return nil
}
