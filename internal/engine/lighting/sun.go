// Package lighting provides the sun and the point and directional lights used
// by the renderer.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/strider/pkg/math"
)

// Sun is a directional light.
type Sun struct {
	Direction math.Vec3 // towards the light
	Color     math.Vec3
	Ambient   math.Vec3
}

// DefaultSun returns a warm light high over the front-right of the scene.
func DefaultSun() Sun {
	return Sun{
		Direction: SunDirection(45, 60),
		Color:     math.Vec3{X: 1, Y: 0.96, Z: 0.9},
		Ambient:   math.Vec3{X: 0.25, Y: 0.25, Z: 0.3},
	}
}

// SunDirection converts longitude/latitude in degrees to a unit vector
// pointing towards the sun. Longitude turns around Y from +Z, latitude is
// elevation above the horizon.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lon := float64(math.Radians(longitude))
	lat := float64(math.Radians(latitude))

	return math.Vec3{
		X: float32(gomath.Cos(lat) * gomath.Sin(lon)),
		Y: float32(gomath.Sin(lat)),
		Z: float32(gomath.Cos(lat) * gomath.Cos(lon)),
	}
}
