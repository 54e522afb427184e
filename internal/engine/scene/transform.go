package scene

import "github.com/Faultbox/strider/pkg/math"

// Transform is a position/rotation/scale triple with an optional parent.
// Rotation is normalized on read, so callers may accumulate quaternion
// products without renormalizing.
type Transform struct {
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3

	// parent is owned by the graph; the transform only observes it.
	parent *Transform
}

// NewTransform returns a transform at the origin with no rotation and unit scale.
func NewTransform() Transform {
	return Transform{
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3One,
	}
}

// SetPosition sets the local position.
func (t *Transform) SetPosition(p math.Vec3) { t.Position = p }

// SetRotation sets the local rotation.
func (t *Transform) SetRotation(q math.Quat) { t.Rotation = q }

// SetScale sets the local scale.
func (t *Transform) SetScale(s math.Vec3) { t.Scale = s }

// Parent returns the parent transform, or nil for a root or detached node.
func (t *Transform) Parent() *Transform { return t.parent }

// LocalMatrix returns Translate(Position) * Rotate(Rotation) * Scale(Scale).
func (t *Transform) LocalMatrix() math.Mat4 {
	return math.TranslateVec3(t.Position).
		Mul(t.Rotation.ToMat4()).
		Mul(math.ScaleVec3(t.Scale))
}

// WorldMatrix composes the local matrices of every ancestor, O(depth).
func (t *Transform) WorldMatrix() math.Mat4 {
	if t.parent == nil {
		return t.LocalMatrix()
	}
	return t.parent.WorldMatrix().Mul(t.LocalMatrix())
}

// WorldPosition returns the image of the local origin in world space.
func (t *Transform) WorldPosition() math.Vec3 {
	return t.WorldMatrix().Position()
}

// WorldRotation returns the accumulated rotation of the transform and its
// ancestors. Non-uniform ancestor scale is ignored.
func (t *Transform) WorldRotation() math.Quat {
	q := t.Rotation.Normalize()
	for p := t.parent; p != nil; p = p.parent {
		q = p.Rotation.Normalize().Mul(q)
	}
	return q.Normalize()
}
