package lighting

import (
	"fmt"

	"github.com/Faultbox/strider/pkg/math"
)

// MaxLights is the size of the light arrays in the scene shader.
const MaxLights = 10

// Type selects how a light is evaluated in the shader.
type Type int32

const (
	Point Type = iota
	Directional
)

func (t Type) String() string {
	switch t {
	case Point:
		return "point"
	case Directional:
		return "directional"
	default:
		return fmt.Sprintf("Type(%d)", int32(t))
	}
}

// ParseType maps a config name to a light type.
func ParseType(s string) (Type, error) {
	switch s {
	case "point":
		return Point, nil
	case "directional":
		return Directional, nil
	default:
		return 0, fmt.Errorf("unknown light type %q", s)
	}
}

// Light is a light source in world space.
type Light struct {
	Type Type
	// Position of a point light, or the direction towards a directional light.
	Position  math.Vec3
	Color     math.Vec3
	Intensity float32
	Range     float32 // point lights fade to zero at this distance
}

// Buffer collects the lights uploaded for one frame.
type Buffer struct {
	Lights []Light
}

// NewBuffer creates an empty light buffer.
func NewBuffer() *Buffer {
	return &Buffer{Lights: make([]Light, 0, MaxLights)}
}

// Len returns the number of buffered lights.
func (b *Buffer) Len() int { return len(b.Lights) }

// Clear removes all lights.
func (b *Buffer) Clear() {
	b.Lights = b.Lights[:0]
}

// Add appends a light. It returns false when the buffer is full.
func (b *Buffer) Add(l Light) bool {
	if len(b.Lights) >= MaxLights {
		return false
	}
	b.Lights = append(b.Lights, l)
	return true
}

// Set replaces the buffered lights, keeping at most MaxLights. It returns how
// many were dropped.
func (b *Buffer) Set(lights []Light) int {
	b.Clear()
	n := min(len(lights), MaxLights)
	b.Lights = append(b.Lights, lights[:n]...)
	return len(lights) - n
}

// Positions returns MaxLights xyz triples for a vec3 uniform array.
func (b *Buffer) Positions() []float32 {
	out := make([]float32, MaxLights*3)
	for i, l := range b.Lights {
		out[i*3+0] = l.Position.X
		out[i*3+1] = l.Position.Y
		out[i*3+2] = l.Position.Z
	}
	return out
}

// Colors returns MaxLights rgb triples premultiplied by intensity.
func (b *Buffer) Colors() []float32 {
	out := make([]float32, MaxLights*3)
	for i, l := range b.Lights {
		c := l.Color.Scale(l.Intensity)
		out[i*3+0] = c.X
		out[i*3+1] = c.Y
		out[i*3+2] = c.Z
	}
	return out
}

// Ranges returns MaxLights falloff distances.
func (b *Buffer) Ranges() []float32 {
	out := make([]float32, MaxLights)
	for i, l := range b.Lights {
		out[i] = l.Range
	}
	return out
}

// Types returns MaxLights light types for an int uniform array.
func (b *Buffer) Types() []int32 {
	out := make([]int32, MaxLights)
	for i, l := range b.Lights {
		out[i] = int32(l.Type)
	}
	return out
}
