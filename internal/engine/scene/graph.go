// Package scene provides the scene graph: a tree of transforms with render
// bindings, depth-first traversal with accumulated world matrices, and a
// registry of viewport cameras.
package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Faultbox/strider/pkg/math"
)

var (
	// ErrNodeNotFound is returned for handles that do not name a node.
	ErrNodeNotFound = errors.New("scene: node not found")
	// ErrCycle is returned when attaching a node beneath itself or one of its
	// descendants.
	ErrCycle = errors.New("scene: attachment would create a cycle")
	// ErrRootNode is returned when trying to re-parent the root.
	ErrRootNode = errors.New("scene: root node cannot be attached")
)

// NodeID is a stable handle into the graph's node arena.
type NodeID int

// NoNode is the absent handle. Passing it as a parent means "the root".
const NoNode NodeID = -1

// RenderBinding names the mesh and material drawn for a node. Either being
// empty means the node has no visual; only renderers care.
type RenderBinding struct {
	Mesh     string
	Material string
}

// HasVisual reports whether both references are set.
func (b RenderBinding) HasVisual() bool {
	return b.Mesh != "" && b.Material != ""
}

// Node is one element of the scene tree.
type Node struct {
	ID        NodeID
	Name      string
	Transform Transform
	Binding   RenderBinding

	parent   NodeID
	children []NodeID
}

// Parent returns the parent handle, NoNode for the root or a detached node.
func (n *Node) Parent() NodeID { return n.parent }

// Children returns the child handles in attachment order. The slice must not
// be modified.
func (n *Node) Children() []NodeID { return n.children }

// TraverseFunc receives each node with its world matrix and depth (root is 0).
// It must not mutate the node.
type TraverseFunc func(n *Node, world math.Mat4, depth int)

// Graph owns every node and camera of a scene.
type Graph struct {
	nodes []*Node
	root  NodeID

	cameras     map[string]*Camera
	cameraOrder []string
}

// NewGraph creates a graph holding only a root node and the default camera.
func NewGraph() *Graph {
	g := &Graph{
		cameras: make(map[string]*Camera),
	}
	g.root = g.CreateNode("root", NewTransform(), RenderBinding{})
	if _, err := g.AddCamera(DefaultCamera, DefaultCameraConfig()); err != nil {
		panic(err)
	}
	return g
}

// Root returns the root handle.
func (g *Graph) Root() NodeID { return g.root }

// Len returns the number of nodes, attached or not.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node for id, or nil if the handle is unknown.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// CreateNode allocates a detached node. Attach it with AddObject.
func (g *Graph) CreateNode(name string, t Transform, b RenderBinding) NodeID {
	id := NodeID(len(g.nodes))
	t.parent = nil
	g.nodes = append(g.nodes, &Node{
		ID:        id,
		Name:      name,
		Transform: t,
		Binding:   b,
		parent:    NoNode,
	})
	return id
}

// AddObject attaches child under parent, or under the root when parent is
// NoNode. A child that already has a parent is moved.
func (g *Graph) AddObject(child, parent NodeID) error {
	if parent == NoNode {
		parent = g.root
	}
	c := g.Node(child)
	if c == nil {
		return fmt.Errorf("child %d: %w", child, ErrNodeNotFound)
	}
	p := g.Node(parent)
	if p == nil {
		return fmt.Errorf("parent %d: %w", parent, ErrNodeNotFound)
	}
	if child == g.root {
		return ErrRootNode
	}
	for id := parent; id != NoNode; id = g.nodes[id].parent {
		if id == child {
			return fmt.Errorf("attach %q under %q: %w", c.Name, p.Name, ErrCycle)
		}
	}

	g.detach(c)
	c.parent = parent
	c.Transform.parent = &p.Transform
	p.children = append(p.children, child)
	return nil
}

func (g *Graph) detach(n *Node) {
	if n.parent == NoNode {
		return
	}
	old := g.nodes[n.parent]
	old.children = slices.DeleteFunc(old.children, func(id NodeID) bool { return id == n.ID })
	n.parent = NoNode
	n.Transform.parent = nil
}

// Traverse walks the tree depth-first in pre-order starting at the root with
// the identity matrix. Each node's world matrix is its parent's world matrix
// times its local matrix.
func (g *Graph) Traverse(fn TraverseFunc) {
	g.traverse(g.root, math.Identity(), 0, fn)
}

func (g *Graph) traverse(id NodeID, parent math.Mat4, depth int, fn TraverseFunc) {
	n := g.nodes[id]
	world := parent.Mul(n.Transform.LocalMatrix())
	fn(n, world, depth)
	for _, c := range n.children {
		g.traverse(c, world, depth+1, fn)
	}
}

// WorldMatrix returns the world matrix of a single node, or identity for an
// unknown handle.
func (g *Graph) WorldMatrix(id NodeID) math.Mat4 {
	n := g.Node(id)
	if n == nil {
		return math.Identity()
	}
	return n.Transform.WorldMatrix()
}
