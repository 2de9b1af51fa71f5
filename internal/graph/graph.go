// Package graph tracks differentiation-graph identities for the Axon ML framework.
//
// The creation core only needs to know which graphs exist at a given moment so
// that copied arrays can be connected to all of them. The actual backward-pass
// machinery lives outside this module and consumes the identities tracked here.
package graph

import "sync"

// ID uniquely identifies a differentiation graph within the process.
type ID int64

// Graph is a handle to an active differentiation graph.
type Graph struct {
	id   ID
	name string
}

// ID returns the graph's identity.
func (g Graph) ID() ID {
	return g.id
}

// Name returns the graph's name, for diagnostics only.
func (g Graph) Name() string {
	return g.name
}

var (
	mu     sync.RWMutex
	nextID ID
	active []Graph
)

// New creates a graph and marks it active. Arrays copied while the graph is
// active become connected to it.
func New(name string) Graph {
	mu.Lock()
	defer mu.Unlock()
	nextID++
	g := Graph{id: nextID, name: name}
	active = append(active, g)
	return g
}

// Release deactivates the graph. Releasing an already-released graph is a no-op.
func Release(g Graph) {
	mu.Lock()
	defer mu.Unlock()
	for i, a := range active {
		if a.id == g.id {
			active = append(active[:i], active[i+1:]...)
			return
		}
	}
}

// Scope creates a graph and returns it together with a release function.
// The release function MUST be called to deactivate the graph (use defer).
//
// Example:
//
//	g, done := graph.Scope("train")
//	defer done()
func Scope(name string) (Graph, func()) {
	g := New(name)
	return g, func() { Release(g) }
}

// ActiveIDs returns the identities of all currently active graphs in creation
// order. The returned slice is a copy.
func ActiveIDs() []ID {
	mu.RLock()
	defer mu.RUnlock()
	ids := make([]ID, len(active))
	for i, g := range active {
		ids[i] = g.id
	}
	return ids
}

// IsActive reports whether the graph with the given identity is active.
func IsActive(id ID) bool {
	mu.RLock()
	defer mu.RUnlock()
	for _, g := range active {
		if g.id == id {
			return true
		}
	}
	return false
}
