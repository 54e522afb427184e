package ecs

import (
	"github.com/Faultbox/strider/internal/engine/scene"
	"github.com/Faultbox/strider/pkg/math"
)

// Entity names a scene node and owns the components driving it.
type Entity struct {
	Name string
	Node scene.NodeID

	world      *World
	components []Component
	byKind     map[Kind]Component
}

// EntityDesc describes an entity to create. Zero Rotation and Scale mean
// identity and unit scale. An empty Name gets a generated one.
type EntityDesc struct {
	Name     string
	Parent   *Entity
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
	Mesh     string
	Material string

	Components []Component
}

// Transform returns the entity's node transform.
func (e *Entity) Transform() *scene.Transform {
	return &e.world.graph.Node(e.Node).Transform
}

// SceneNode returns the entity's node.
func (e *Entity) SceneNode() *scene.Node {
	return e.world.graph.Node(e.Node)
}

// Components returns the attached components in attachment order.
func (e *Entity) Components() []Component { return e.components }

// Component returns the first attached component of the given kind, or nil.
func (e *Entity) Component(k Kind) Component {
	return e.byKind[k]
}

// ComponentOf returns the first component of kind k as T.
func ComponentOf[T Component](e *Entity, k Kind) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	c, ok := e.byKind[k].(T)
	if !ok {
		return zero, false
	}
	return c, true
}

func (e *Entity) add(c Component) {
	e.components = append(e.components, c)
	if e.byKind == nil {
		e.byKind = make(map[Kind]Component)
	}
	if _, ok := e.byKind[c.Kind()]; !ok {
		e.byKind[c.Kind()] = c
	}
}
