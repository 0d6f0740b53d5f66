// Package node implements the per-client blur node registry: opaque
// handles binding a size and a parameter set to a client identity.
package node

import (
	"errors"

	"github.com/wlblur/wlblurd/internal/params"
)

// MaxNodesPerClient is the default per-client quota; a Registry may be
// constructed with a different cap (see NewRegistryWithQuota).
const MaxNodesPerClient = 100

// ErrQuotaExceeded is returned by Create when the owning client already
// holds the registry's per-client quota.
var ErrQuotaExceeded = errors.New("node: per-client quota exceeded")

// ErrNotFound is returned by Lookup and Destroy for an unknown or
// already-destroyed identifier.
var ErrNotFound = errors.New("node: not found")

// Stats holds optional per-node render statistics, supplementing
// spec's data model with fields original_source's blur_node.c tracks
// (render_count, last_render_time_us) but spec.md only gestures at
// ("optionally per-node statistics").
type Stats struct {
	RenderCount       uint64
	LastRenderMicros  uint64
}

// Node is an opaque per-client handle.
type Node struct {
	ID       uint32
	ClientID uint32
	Width    uint32
	Height   uint32
	Params   params.Set
	Stats    Stats
}

// Registry tracks live nodes. Zero value is not usable; use
// NewRegistry. Not safe for concurrent use — the daemon's single
// goroutine owns it exclusively, per spec's concurrency model.
type Registry struct {
	quota   int
	nextID  uint32
	nodes   map[uint32]*Node
	byOwner map[uint32]map[uint32]struct{}
}

// NewRegistry returns a registry enforcing MaxNodesPerClient per
// client.
func NewRegistry() *Registry {
	return NewRegistryWithQuota(MaxNodesPerClient)
}

// NewRegistryWithQuota returns a registry enforcing an explicit
// per-client quota, for daemons that configure max_nodes_per_client.
func NewRegistryWithQuota(quota int) *Registry {
	return &Registry{
		quota:   quota,
		nodes:   make(map[uint32]*Node),
		byOwner: make(map[uint32]map[uint32]struct{}),
	}
}

// Create allocates a node for clientID, returning its new, never-zero
// identifier. Fails with ErrQuotaExceeded once the client already owns
// quota nodes.
func (r *Registry) Create(clientID, width, height uint32, p params.Set) (uint32, error) {
	owned := r.byOwner[clientID]
	if len(owned) >= r.quota {
		return 0, ErrQuotaExceeded
	}
	r.nextID++
	if r.nextID == 0 {
		r.nextID = 1 // 0 is the "no node" sentinel; wrap past it
	}
	id := r.nextID
	r.nodes[id] = &Node{ID: id, ClientID: clientID, Width: width, Height: height, Params: p}
	if owned == nil {
		owned = make(map[uint32]struct{})
		r.byOwner[clientID] = owned
	}
	owned[id] = struct{}{}
	return id, nil
}

// Lookup returns the node registered under id.
func (r *Registry) Lookup(id uint32) (*Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

// Destroy frees the slot held by id.
func (r *Registry) Destroy(id uint32) error {
	n, ok := r.nodes[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.nodes, id)
	if owned := r.byOwner[n.ClientID]; owned != nil {
		delete(owned, id)
		if len(owned) == 0 {
			delete(r.byOwner, n.ClientID)
		}
	}
	return nil
}

// DestroyAllFor frees every node owned by clientID, as happens on
// client disconnect.
func (r *Registry) DestroyAllFor(clientID uint32) {
	owned := r.byOwner[clientID]
	for id := range owned {
		delete(r.nodes, id)
	}
	delete(r.byOwner, clientID)
}

// CountFor reports how many nodes clientID currently owns.
func (r *Registry) CountFor(clientID uint32) int {
	return len(r.byOwner[clientID])
}
