package robot

import (
	gomath "math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"

	"github.com/Faultbox/strider/internal/engine/camera"
	"github.com/Faultbox/strider/internal/engine/ecs"
	"github.com/Faultbox/strider/internal/logger"
	"github.com/Faultbox/strider/pkg/math"
)

const (
	BobKind              ecs.Kind = "motion.bob"
	RotateKind           ecs.Kind = "motion.rotate"
	PlayerControllerKind ecs.Kind = "motion.player"
	FollowCameraKind     ecs.Kind = "motion.follow_camera"
)

// AxisSource reports a two-axis input in [-1, 1] for a named axis set.
// X is strafe/turn (right positive), Y is forward.
type AxisSource interface {
	Axis(set string) math.Vec2
}

// Bob moves its entity up and down around the height it started at.
type Bob struct {
	ecs.Base
	Amplitude float32
	Frequency float32 // radians per second
	Ease      ease.TweenFunc

	base  float32
	tween *gween.Tween
	up    bool
}

// NewBob creates a bob with a sine-shaped swing.
func NewBob(amplitude, frequency float32) *Bob {
	return &Bob{Amplitude: amplitude, Frequency: frequency, Ease: ease.InOutSine}
}

// Kind implements ecs.Component.
func (b *Bob) Kind() ecs.Kind { return BobKind }

// Start implements ecs.Component.
func (b *Bob) Start() {
	b.base = b.Transform().Position.Y
	b.up = true
	b.tween = b.swing()
}

func (b *Bob) swing() *gween.Tween {
	from, to := -b.Amplitude, b.Amplitude
	if !b.up {
		from, to = to, from
	}
	fn := b.Ease
	if fn == nil {
		fn = ease.InOutSine
	}
	return gween.New(from, to, gomath.Pi/b.Frequency, fn)
}

// Update implements ecs.Component.
func (b *Bob) Update(dt float64) {
	if b.Frequency <= 0 || b.tween == nil {
		return
	}
	v, done := b.tween.Update(float32(dt))
	b.Transform().Position.Y = b.base + v
	if done {
		b.up = !b.up
		b.tween = b.swing()
	}
}

// Rotate spins its entity about a fixed local axis.
type Rotate struct {
	ecs.Base
	Axis  math.Vec3
	Speed float32 // radians per second
}

// NewRotate creates a rotation about axis.
func NewRotate(axis math.Vec3, speed float32) *Rotate {
	return &Rotate{Axis: axis, Speed: speed}
}

// Kind implements ecs.Component.
func (r *Rotate) Kind() ecs.Kind { return RotateKind }

// Update implements ecs.Component.
func (r *Rotate) Update(dt float64) {
	axis := r.Axis.NormalizeOr(math.Vec3Up, 1e-6)
	t := r.Transform()
	step := math.QuatFromAxisAngle(axis, r.Speed*float32(dt))
	t.SetRotation(step.Mul(t.Rotation).Normalize())
}

// PlayerController turns and drives its entity from an axis set, keeping it
// inside a circle around the origin on the XZ plane.
type PlayerController struct {
	ecs.Base
	Input          AxisSource
	AxisSet        string
	MoveSpeed      float32
	TurnSpeed      float32 // radians per second
	WalkableRadius float32 // zero means unbounded
}

// Kind implements ecs.Component.
func (p *PlayerController) Kind() ecs.Kind { return PlayerControllerKind }

// Update implements ecs.Component.
func (p *PlayerController) Update(dt float64) {
	if p.Input == nil {
		return
	}
	a := p.Input.Axis(p.AxisSet)
	t := p.Transform()
	fdt := float32(dt)

	if a.X != 0 {
		turn := math.QuatFromAxisAngle(math.Vec3Up, -a.X*p.TurnSpeed*fdt)
		t.SetRotation(turn.Mul(t.Rotation).Normalize())
	}
	if a.Y != 0 {
		forward := t.Rotation.Rotate(math.Vec3{Z: -1})
		forward.Y = 0
		forward = forward.NormalizeOr(math.Vec3{Z: -1}, 1e-6)
		t.Position = t.Position.Add(forward.Scale(a.Y * p.MoveSpeed * fdt))
	}

	if p.WalkableRadius > 0 {
		flat := t.Position.XZ()
		if r := flat.Length(); r > p.WalkableRadius {
			flat = flat.Scale(p.WalkableRadius / r)
			t.Position.X, t.Position.Z = flat.X, flat.Y
		}
	}
}

// FollowCamera keeps a camera entity orbiting a target entity.
type FollowCamera struct {
	ecs.Base
	Target     string
	LookHeight float32
	Rig        *camera.Orbit

	warned bool
}

// NewFollowCamera follows target with a default orbit rig.
func NewFollowCamera(target string) *FollowCamera {
	return &FollowCamera{Target: target, Rig: camera.NewOrbit()}
}

// Kind implements ecs.Component.
func (f *FollowCamera) Kind() ecs.Kind { return FollowCameraKind }

// Start snaps the rig onto the target.
func (f *FollowCamera) Start() {
	if p, ok := f.targetPosition(); ok {
		f.Rig.Center = p
		t := f.Transform()
		t.SetPosition(f.Rig.Position())
		t.SetRotation(f.Rig.Rotation())
	}
}

// Update implements ecs.Component.
func (f *FollowCamera) Update(dt float64) {
	p, ok := f.targetPosition()
	if !ok {
		return
	}
	f.Rig.Follow(p, float32(dt))
	t := f.Transform()
	t.SetPosition(f.Rig.Position())
	// Yaw changes from mouse drags ease in rather than snapping.
	t.SetRotation(f.Rig.Turn(t.Rotation, float32(dt)))
}

func (f *FollowCamera) targetPosition() (math.Vec3, bool) {
	e := f.World().Entity(f.Target)
	if e == nil {
		if !f.warned {
			f.warned = true
			logger.Named("robot.camera").Warn("camera target missing", zap.String("target", f.Target))
		}
		return math.Vec3{}, false
	}
	p := e.Transform().WorldPosition()
	p.Y += f.LookHeight
	return p, true
}
