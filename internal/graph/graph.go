// Package graph assembles per-model metadata into a normalized, immutable
// metadata graph and checks it for consistency. A graph is built in two
// phases (insert all nodes, then resolve relationship targets) so models can
// reference each other regardless of declaration order.
package graph

import (
	"github.com/modelforge-dev/modelforge/internal/metadata"
)

// Graph is the resolved set of model metadata nodes for an application,
// keyed by model identity. Once built it is immutable; derivers borrow
// read-only references and never mutate it.
type Graph struct {
	buildID string
	models  map[metadata.ModelID]*metadata.ModelMetadata
	order   []metadata.ModelID
}

// BuildID identifies this build for log correlation.
func (g *Graph) BuildID() string { return g.buildID }

// Model returns the node with the given identity.
func (g *Graph) Model(id metadata.ModelID) (*metadata.ModelMetadata, bool) {
	m, ok := g.models[id]
	return m, ok
}

// Models returns all nodes in declaration order.
func (g *Graph) Models() []*metadata.ModelMetadata {
	out := make([]*metadata.ModelMetadata, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.models[id])
	}
	return out
}

// IDs returns all model identities in declaration order.
func (g *Graph) IDs() []metadata.ModelID {
	return append([]metadata.ModelID(nil), g.order...)
}

// Len returns the number of models in the graph.
func (g *Graph) Len() int { return len(g.models) }
