// Package camera provides camera rigs that compute a camera pose from a
// target point.
package camera

import (
	gomath "math"

	"github.com/Faultbox/strider/pkg/math"
)

// Orbit keeps a camera behind and above a target at a fixed pitch.
type Orbit struct {
	// Point the camera looks at
	Center math.Vec3

	// Camera orientation
	Yaw   float32 // Horizontal rotation around the center (radians)
	Pitch float32 // Elevation above the horizon (radians)

	// Distance from center
	Distance    float32
	MinDistance float32
	MaxDistance float32

	// Sensitivity
	YawSensitivity  float32
	ZoomSensitivity float32

	// Smoothing is the rate, per second, at which Follow closes the gap to
	// a moving center. Zero snaps.
	Smoothing float32
}

// NewOrbit creates an orbit rig with defaults sized for the robot scene.
func NewOrbit() *Orbit {
	return &Orbit{
		Pitch:           0.45,
		Distance:        14,
		MinDistance:     4,
		MaxDistance:     60,
		YawSensitivity:  0.005,
		ZoomSensitivity: 0.1,
		Smoothing:       5,
	}
}

// Position returns the camera position for the current center.
func (c *Orbit) Position() math.Vec3 {
	offsetY := c.Distance * float32(gomath.Sin(float64(c.Pitch)))
	horizDist := c.Distance * float32(gomath.Cos(float64(c.Pitch)))
	offsetX := horizDist * float32(gomath.Sin(float64(c.Yaw)))
	offsetZ := horizDist * float32(gomath.Cos(float64(c.Yaw)))

	return math.Vec3{
		X: c.Center.X - offsetX,
		Y: c.Center.Y + offsetY,
		Z: c.Center.Z - offsetZ,
	}
}

// Rotation returns the camera orientation facing the center. The camera
// looks down its local -Z axis.
func (c *Orbit) Rotation() math.Quat {
	yaw := math.QuatFromAxisAngle(math.Vec3Up, c.Yaw+gomath.Pi)
	pitch := math.QuatFromAxisAngle(math.Vec3X, -c.Pitch)
	return yaw.Mul(pitch).Normalize()
}

// Blend returns the fraction of the remaining gap closed over dt. It is 1
// when smoothing is off.
func (c *Orbit) Blend(dt float32) float32 {
	if c.Smoothing <= 0 {
		return 1
	}
	return 1 - float32(gomath.Exp(float64(-c.Smoothing*dt)))
}

// Follow moves the center toward target, exponentially smoothed over dt.
func (c *Orbit) Follow(target math.Vec3, dt float32) {
	c.Center = c.Center.Lerp(target, c.Blend(dt))
}

// Turn eases from toward the rig's current rotation over dt.
func (c *Orbit) Turn(from math.Quat, dt float32) math.Quat {
	return from.Slerp(c.Rotation(), c.Blend(dt)).Normalize()
}

// HandleYaw rotates the camera horizontally around the center.
func (c *Orbit) HandleYaw(deltaX float32) {
	c.Yaw -= deltaX * c.YawSensitivity
}

// HandleZoom updates the distance from the center.
func (c *Orbit) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = math.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// Forward returns the camera's forward direction on the XZ plane.
func (c *Orbit) Forward() math.Vec2 {
	return math.Vec2{X: float32(gomath.Sin(float64(c.Yaw))), Y: float32(gomath.Cos(float64(c.Yaw)))}
}
