// Package daemon assembles the single process-wide state value the
// daemon runs from: one GPU context, one node registry, and one active
// configuration. The client table is not part of State; it lives in
// ipcserver.Server. Spec §9 forbids routing these through
// package-level globals; State is the one value every component is
// threaded through instead.
package daemon

import (
	"log/slog"
	"sync/atomic"

	"github.com/wlblur/wlblurd/internal/config"
	"github.com/wlblur/wlblurd/internal/gpu"
	"github.com/wlblur/wlblurd/internal/node"
	"github.com/wlblur/wlblurd/internal/params"
)

// State is the daemon's single owned value. Everything the connection
// multiplexer needs to dispatch a request lives here.
type State struct {
	Log *slog.Logger

	Blur  *gpu.Service
	Nodes *node.Registry

	// configPath is the path (possibly empty, meaning "search
	// config.DefaultSearchPath") the daemon was started with. Reload
	// reuses it so a daemon started with an explicit -config flag keeps
	// reloading from that same file rather than drifting to the default
	// search path (original_source/wlblurd/src/reload.c's
	// handle_config_reload takes and reuses this same path).
	configPath string

	cfg     atomic.Pointer[config.Config]
	presets atomic.Pointer[params.Registry]

	// ReloadPending is set by the SIGUSR1 handler and polled once per
	// event loop tick. It is the only state shared between a signal
	// context and the main goroutine (spec §9's signal-handler-safety
	// note): no allocation or logging happens inside the handler.
	ReloadPending atomic.Bool
}

// New builds a daemon state value: acquires the GPU context and
// shader programs (C1-C6), and creates the node registry (C8) with the
// quota the configuration requests. configPath is the path cfg was
// loaded from (as given to config.Load; "" means the default search
// path) and is reused by every subsequent Reload.
func New(log *slog.Logger, configPath string, cfg *config.Config) (*State, error) {
	blur, err := gpu.NewService(log)
	if err != nil {
		return nil, err
	}
	s := &State{
		Log:        log,
		Blur:       blur,
		Nodes:      node.NewRegistryWithQuota(cfg.MaxNodesPerClient),
		configPath: configPath,
	}
	s.cfg.Store(cfg)
	s.presets.Store(buildRegistry(cfg))
	return s, nil
}

// ConfigPath returns the path (possibly empty) the daemon was started
// with, for Reload to reuse.
func (s *State) ConfigPath() string {
	return s.configPath
}

func buildRegistry(cfg *config.Config) *params.Registry {
	reg := params.NewRegistry()
	for name, p := range cfg.Presets {
		reg.Put(name, p)
	}
	return reg
}

// Close releases the GPU context. The node registry and configuration
// need no explicit teardown.
func (s *State) Close() {
	s.Blur.Close()
}

// Config returns the currently active configuration. Safe to call
// concurrently with Reload, though in practice only the main goroutine
// ever calls either.
func (s *State) Config() *config.Config {
	return s.cfg.Load()
}

// Reload re-reads the configuration from path ("" = default search
// path). On success the new configuration replaces the active one
// atomically; on failure the previous configuration is left in place
// and the error is returned for the caller to log.
func (s *State) Reload(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	s.cfg.Store(cfg)
	s.presets.Store(buildRegistry(cfg))
	return nil
}

// ResolveParams implements C7's resolve() against the active
// configuration: a named preset wins, then an explicit override, then
// the configuration's default block, then the hardcoded defaults.
func (s *State) ResolveParams(presetName string, override *params.Set) params.Set {
	cfg := s.Config()
	reg := s.presets.Load()
	return reg.Resolve(presetName, override, cfg.Defaults)
}
