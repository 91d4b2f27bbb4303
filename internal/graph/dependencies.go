package graph

import (
	"fmt"

	"github.com/modelforge-dev/modelforge/internal/metadata"
)

// DependencyGraph captures foreign-key dependencies between models: an edge
// from A to B means A's table carries a foreign key referencing B, so B must
// be created first.
type DependencyGraph struct {
	graph *Graph
	edges map[metadata.ModelID][]metadata.ModelID
}

// NewDependencyGraph builds the dependency graph from owning relationships.
func NewDependencyGraph(g *Graph) *DependencyGraph {
	dg := &DependencyGraph{
		graph: g,
		edges: make(map[metadata.ModelID][]metadata.ModelID),
	}
	for _, model := range g.Models() {
		for _, rel := range model.RelationshipsInOrder() {
			if rel.Kind.Owning() && rel.Resolved() && rel.Target != model.ID {
				dg.edges[model.ID] = append(dg.edges[model.ID], rel.Target)
			}
		}
	}
	return dg
}

// DetectCycles finds foreign-key dependency cycles.
func (dg *DependencyGraph) DetectCycles() [][]metadata.ModelID {
	var cycles [][]metadata.ModelID
	visited := make(map[metadata.ModelID]bool)
	onStack := make(map[metadata.ModelID]bool)

	var dfs func(node metadata.ModelID, path []metadata.ModelID) bool
	dfs = func(node metadata.ModelID, path []metadata.ModelID) bool {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for _, neighbor := range dg.edges[node] {
			if !visited[neighbor] {
				if dfs(neighbor, path) {
					return true
				}
			} else if onStack[neighbor] {
				start := -1
				for i, n := range path {
					if n == neighbor {
						start = i
						break
					}
				}
				if start >= 0 {
					cycle := make([]metadata.ModelID, len(path)-start)
					copy(cycle, path[start:])
					cycles = append(cycles, cycle)
				}
				return true
			}
		}

		onStack[node] = false
		return false
	}

	for _, id := range dg.graph.IDs() {
		if !visited[id] {
			dfs(id, nil)
		}
	}

	return cycles
}

// TopologicalSort returns model identities in dependency order: models with
// no foreign keys first, so their tables can be created before the tables
// that reference them. The order is deterministic for an unchanged graph.
func (dg *DependencyGraph) TopologicalSort() ([]metadata.ModelID, error) {
	outDegree := make(map[metadata.ModelID]int, dg.graph.Len())
	for _, id := range dg.graph.IDs() {
		outDegree[id] = len(dg.edges[id])
	}

	reverse := make(map[metadata.ModelID][]metadata.ModelID)
	for _, source := range dg.graph.IDs() {
		for _, target := range dg.edges[source] {
			reverse[target] = append(reverse[target], source)
		}
	}

	// Seed in declaration order so the result is stable across runs.
	var queue []metadata.ModelID
	for _, id := range dg.graph.IDs() {
		if outDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	var result []metadata.ModelID
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dependent := range reverse[node] {
			outDegree[dependent]--
			if outDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != dg.graph.Len() {
		if cycles := dg.DetectCycles(); len(cycles) > 0 {
			return nil, fmt.Errorf("dependency cycle: %s", formatCycle(cycles[0]))
		}
		return nil, fmt.Errorf("dependency cycle detected")
	}

	return result, nil
}

// Dependencies returns the models the given model's table references.
func (dg *DependencyGraph) Dependencies(id metadata.ModelID) []metadata.ModelID {
	return append([]metadata.ModelID(nil), dg.edges[id]...)
}

// Dependents returns the models whose tables reference the given model.
func (dg *DependencyGraph) Dependents(id metadata.ModelID) []metadata.ModelID {
	var out []metadata.ModelID
	for _, source := range dg.graph.IDs() {
		for _, target := range dg.edges[source] {
			if target == id {
				out = append(out, source)
				break
			}
		}
	}
	return out
}
