// Package domain contains the core domain models of the bundle planner.
package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// ActionGraph is the set of planned bundle actions and the edges between them.
// An edge points from an action to a bundle action whose outputs it consumes.
type ActionGraph struct {
	actions        map[Label]*InvocationDescriptor
	order          []Label
	executionOrder []Label
}

// NewActionGraph creates a new empty ActionGraph.
func NewActionGraph() *ActionGraph {
	return &ActionGraph{
		actions: make(map[Label]*InvocationDescriptor),
	}
}

// AddAction adds a planned action to the graph.
// It returns an error if an action with the same label already exists.
func (g *ActionGraph) AddAction(d *InvocationDescriptor) error {
	if _, exists := g.actions[d.Label]; exists {
		return zerr.With(ErrActionAlreadyExists, "label", d.Label.String())
	}
	g.actions[d.Label] = d
	g.order = append(g.order, d.Label)
	return nil
}

// Action returns the action planned for l.
func (g *ActionGraph) Action(l Label) (*InvocationDescriptor, bool) {
	d, ok := g.actions[l]
	return d, ok
}

// Len returns the number of actions.
func (g *ActionGraph) Len() int {
	return len(g.actions)
}

// Validate checks for cycles using a topological sort and fixes the execution order.
// Actions without ordering constraints keep their insertion order.
func (g *ActionGraph) Validate() error {
	g.executionOrder = make([]Label, 0, len(g.actions))
	visited := make(map[Label]int) // 0: unvisited, 1: visiting, 2: visited
	var path []Label

	var visit func(u Label) error
	visit = func(u Label) error {
		visited[u] = 1
		path = append(path, u)

		action, exists := g.actions[u]
		if !exists {
			return zerr.With(ErrMissingDependency, "dependency", u.String())
		}

		for _, dep := range action.DependsOn {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	for _, l := range g.order {
		if visited[l] == 0 {
			if err := visit(l); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *ActionGraph) buildCycleError(path []Label, dep Label) error {
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	parts := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
}

// Walk returns an iterator that yields actions in execution order.
// It assumes Validate() has been called and returned nil.
func (g *ActionGraph) Walk() iter.Seq[*InvocationDescriptor] {
	return func(yield func(*InvocationDescriptor) bool) {
		for _, l := range g.executionOrder {
			if !yield(g.actions[l]) {
				return
			}
		}
	}
}
