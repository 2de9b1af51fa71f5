// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph exposes differentiation-graph identities.
//
// Creating a graph marks it active; arrays copied with tensor.Copy while a
// graph is active become connected to it. The backward-pass machinery
// consuming these identities lives outside this module.
package graph

import (
	"github.com/axon-ml/axon/internal/graph"
)

// ID uniquely identifies a differentiation graph within the process.
type ID = graph.ID

// Graph is a handle to an active differentiation graph.
type Graph = graph.Graph

// New creates a graph and marks it active.
func New(name string) Graph { return graph.New(name) }

// Release deactivates the graph.
func Release(g Graph) { graph.Release(g) }

// Scope creates a graph and returns it with a release function that MUST be
// called to deactivate it (use defer).
func Scope(name string) (Graph, func()) { return graph.Scope(name) }

// ActiveIDs returns the identities of all active graphs in creation order.
func ActiveIDs() []ID { return graph.ActiveIDs() }

// IsActive reports whether the graph with the given identity is active.
func IsActive(id ID) bool { return graph.IsActive(id) }
