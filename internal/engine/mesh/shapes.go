package mesh

import (
	gomath "math"

	"github.com/Faultbox/strider/pkg/math"
)

// NewCube returns a cube spanning [-1, 1] on every axis with flat face
// normals. Segments rely on the unit half-height when scaling along Y.
func NewCube() *Mesh {
	faces := []struct {
		normal, u, v math.Vec3
	}{
		{math.Vec3{X: 1}, math.Vec3{Z: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Y: 1}, math.Vec3{X: 1}, math.Vec3{Z: -1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
		{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: -1}, math.Vec3{X: -1}, math.Vec3{Y: 1}},
	}

	m := &Mesh{Name: Cube}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := f.normal.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1]))
			m.Vertices = append(m.Vertices, Vertex{Position: p, Normal: f.normal})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	m.computeBounds()
	return m
}

// NewSphere returns a UV sphere of radius 1. rings and sectors are clamped
// to at least 2 and 3.
func NewSphere(rings, sectors int) *Mesh {
	rings = max(rings, 2)
	sectors = max(sectors, 3)

	m := &Mesh{Name: Sphere}
	for r := 0; r <= rings; r++ {
		theta := gomath.Pi * float64(r) / float64(rings)
		for s := 0; s <= sectors; s++ {
			phi := 2 * gomath.Pi * float64(s) / float64(sectors)
			n := math.Vec3{
				X: float32(gomath.Sin(theta) * gomath.Cos(phi)),
				Y: float32(gomath.Cos(theta)),
				Z: float32(gomath.Sin(theta) * gomath.Sin(phi)),
			}
			m.Vertices = append(m.Vertices, Vertex{Position: n, Normal: n})
		}
	}

	stride := uint32(sectors + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(sectors); s++ {
			a := r*stride + s
			b := a + stride
			if r != 0 {
				m.Indices = append(m.Indices, a, a+1, b)
			}
			if r != uint32(rings)-1 {
				m.Indices = append(m.Indices, a+1, b+1, b)
			}
		}
	}
	m.computeBounds()
	return m
}

// NewPlane returns an upward-facing grid in the XZ plane spanning [-1, 1]
// with divisions cells per side.
func NewPlane(divisions int) *Mesh {
	divisions = max(divisions, 1)

	m := &Mesh{Name: Plane}
	step := 2 / float32(divisions)
	for z := 0; z <= divisions; z++ {
		for x := 0; x <= divisions; x++ {
			m.Vertices = append(m.Vertices, Vertex{
				Position: math.Vec3{X: -1 + float32(x)*step, Z: -1 + float32(z)*step},
				Normal:   math.Vec3Up,
			})
		}
	}

	stride := uint32(divisions + 1)
	for z := uint32(0); z < uint32(divisions); z++ {
		for x := uint32(0); x < uint32(divisions); x++ {
			a := z*stride + x
			b := a + stride
			m.Indices = append(m.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	m.computeBounds()
	return m
}
