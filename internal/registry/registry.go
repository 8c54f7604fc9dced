// Package registry relates visual nodes to simulated bodies.
package registry

import (
	"errors"

	"github.com/san-kum/rigidsync/internal/physics"
	"github.com/san-kum/rigidsync/internal/scene"
)

var (
	ErrDuplicateNode = errors.New("registry: node already bound")
	ErrNilBinding    = errors.New("registry: binding needs both a node and a body")
)

// Binding pairs a node with a body. Neither side is owned by the registry.
type Binding struct {
	Node *scene.Node
	Body *physics.RigidBody
}

// Registry is an append-only list of bindings kept in insertion order.
type Registry struct {
	bindings []Binding
	byNode   map[*scene.Node]int
}

func New() *Registry {
	return &Registry{byNode: make(map[*scene.Node]int)}
}

func (r *Registry) Add(node *scene.Node, body *physics.RigidBody) error {
	if node == nil || body == nil {
		return ErrNilBinding
	}
	if _, ok := r.byNode[node]; ok {
		return ErrDuplicateNode
	}
	r.byNode[node] = len(r.bindings)
	r.bindings = append(r.bindings, Binding{Node: node, Body: body})
	return nil
}

func (r *Registry) ForEach(fn func(node *scene.Node, body *physics.RigidBody)) {
	for _, b := range r.bindings {
		fn(b.Node, b.Body)
	}
}

func (r *Registry) FindBodyForNode(node *scene.Node) (*physics.RigidBody, bool) {
	i, ok := r.byNode[node]
	if !ok {
		return nil, false
	}
	return r.bindings[i].Body, true
}

func (r *Registry) Bindings() []Binding {
	out := make([]Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

func (r *Registry) Nodes() []*scene.Node {
	out := make([]*scene.Node, len(r.bindings))
	for i, b := range r.bindings {
		out[i] = b.Node
	}
	return out
}

func (r *Registry) Len() int { return len(r.bindings) }
