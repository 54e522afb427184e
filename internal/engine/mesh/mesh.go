// Package mesh provides procedural meshes for the renderer.
package mesh

import (
	"fmt"
	"sort"

	"github.com/Faultbox/strider/pkg/math"
)

// Names of the built-in meshes.
const (
	Cube   = "cube"
	Sphere = "sphere"
	Plane  = "plane"
)

// Vertex is a mesh vertex with position and normal.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
}

// Bounds is an axis-aligned bounding box in mesh space.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Mesh holds indexed triangles ready for GPU upload.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// FloatsPerVertex is the interleaved stride of Interleave in floats.
const FloatsPerVertex = 6

// Interleave packs vertices as position followed by normal.
func (m *Mesh) Interleave() []float32 {
	out := make([]float32, 0, len(m.Vertices)*FloatsPerVertex)
	for _, v := range m.Vertices {
		out = append(out,
			v.Position.X, v.Position.Y, v.Position.Z,
			v.Normal.X, v.Normal.Y, v.Normal.Z,
		)
	}
	return out
}

// Triangles returns the number of triangles.
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

func (m *Mesh) computeBounds() {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi := m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		p := v.Position
		lo = math.Vec3{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = math.Vec3{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	m.Bounds = Bounds{Min: lo, Max: hi}
}

// Library maps mesh names to mesh data.
type Library struct {
	meshes map[string]*Mesh
}

// NewLibrary returns a library holding the built-in cube, sphere and plane.
func NewLibrary() *Library {
	l := &Library{meshes: make(map[string]*Mesh)}
	l.Add(NewCube())
	l.Add(NewSphere(16, 24))
	l.Add(NewPlane(8))
	return l
}

// Add registers m under m.Name, replacing any previous mesh of that name.
func (l *Library) Add(m *Mesh) {
	l.meshes[m.Name] = m
}

// Get looks up a mesh by name.
func (l *Library) Get(name string) (*Mesh, error) {
	m, ok := l.meshes[name]
	if !ok {
		return nil, fmt.Errorf("mesh %q not found", name)
	}
	return m, nil
}

// Names returns the registered mesh names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.meshes))
	for name := range l.meshes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
