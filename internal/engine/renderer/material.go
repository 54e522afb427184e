package renderer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/strider/internal/engine/scene"
	"github.com/Faultbox/strider/internal/logger"
	"github.com/Faultbox/strider/pkg/math"
)

// Material is a flat-coloured surface.
type Material struct {
	Color [4]float32
	// Unlit materials ignore the sun and draw at full colour.
	Unlit bool
}

// MissingMaterial is drawn for bindings that name an unknown material.
var MissingMaterial = Material{Color: [4]float32{1, 0, 1, 1}, Unlit: true}

// DrawCall is one node queued for drawing.
type DrawCall struct {
	Node     scene.NodeID
	Mesh     string
	Material Material
	Model    math.Mat4
}

// Queue collects draw calls from a scene graph traversal.
type Queue struct {
	Materials map[string]Material
	Calls     []DrawCall

	warned map[string]bool
}

// NewQueue returns a queue resolving materials from materials.
func NewQueue(materials map[string]Material) *Queue {
	return &Queue{
		Materials: materials,
		warned:    make(map[string]bool),
	}
}

// Build walks g and replaces Calls with every node that has a visual.
// Nodes without a mesh or material are skipped.
func (q *Queue) Build(g *scene.Graph) []DrawCall {
	q.Calls = q.Calls[:0]
	g.Traverse(func(n *scene.Node, world math.Mat4, _ int) {
		if !n.Binding.HasVisual() {
			return
		}
		mat, ok := q.Materials[n.Binding.Material]
		if !ok {
			if !q.warned[n.Binding.Material] {
				q.warned[n.Binding.Material] = true
				logger.Warn("unknown material",
					zap.String("material", n.Binding.Material),
					zap.String("node", n.Name),
				)
			}
			mat = MissingMaterial
		}
		q.Calls = append(q.Calls, DrawCall{
			Node:     n.ID,
			Mesh:     n.Binding.Mesh,
			Material: mat,
			Model:    world,
		})
	})
	return q.Calls
}
