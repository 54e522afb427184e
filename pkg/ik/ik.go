// Package ik solves two-bone inverse kinematics chains with a pole target.
//
// The solver projects the chain onto the plane spanned by the root, the end
// target and the pole, then runs a bounded number of FABRIK passes. Knee
// positions are kept on the pole side of the root-target line, and the final
// knee is settled where both bones have their exact length.
package ik

import (
	gomath "math"

	"github.com/Faultbox/strider/pkg/math"
)

const (
	// DefaultIterations bounds the FABRIK passes per solve.
	DefaultIterations = 10
	// DefaultTolerance is the end-effector error at which solving stops early.
	DefaultTolerance = 0.01

	epsilon = 1e-6
)

// Solver configures the iterative two-bone solve.
type Solver struct {
	MaxIterations int
	Tolerance     float32
}

// DefaultSolver returns a solver with the default iteration cap and tolerance.
func DefaultSolver() Solver {
	return Solver{MaxIterations: DefaultIterations, Tolerance: DefaultTolerance}
}

// SolveKnee solves with the default solver settings.
func SolveKnee(pelvis, foot, pole math.Vec3, upper, lower float32) math.Vec3 {
	return DefaultSolver().Solve(pelvis, foot, pole, upper, lower)
}

// Solve returns the knee position for a chain rooted at pelvis whose end should
// reach foot, bending towards pole. upper and lower are the bone lengths.
//
// Targets beyond the combined length yield the pelvis-foot midpoint. A target at
// exactly full reach yields a knee on the pelvis-foot segment. The result is
// always finite for finite inputs.
func (s Solver) Solve(pelvis, foot, pole math.Vec3, upper, lower float32) math.Vec3 {
	toFoot := foot.Sub(pelvis)
	dist := toFoot.Length()
	reach := upper + lower

	if dist > reach {
		return pelvis.Add(toFoot.Scale(0.5))
	}

	dir := toFoot.NormalizeOr(math.Vec3{Y: -1}, epsilon)
	bend := bendDirection(pelvis, dir, pole)

	if reach-dist <= epsilon*reach {
		return pelvis.Add(dir.Scale(upper))
	}

	// Plane through pelvis containing the chain and the bend direction.
	normal := dir.Cross(bend).NormalizeOr(math.Vec3X, epsilon)

	iterations := s.MaxIterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	tolerance := s.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	root := pelvis
	knee := pelvis.Add(dir.Add(bend).NormalizeOr(bend, epsilon).Scale(upper))
	end := knee.Add(foot.Sub(knee).NormalizeOr(dir, epsilon).Scale(lower))

	for i := 0; i < iterations; i++ {
		// Backward pass: anchor the end at the foot.
		end = foot
		knee = end.Add(knee.Sub(end).NormalizeOr(bend, epsilon).Scale(lower))
		root = knee.Add(root.Sub(knee).NormalizeOr(dir.Negate(), epsilon).Scale(upper))

		// Forward pass: re-anchor at the pelvis.
		root = pelvis
		knee = root.Add(knee.Sub(root).NormalizeOr(bend, epsilon).Scale(upper))
		knee = correctTowardsPole(knee, pelvis, dir, normal, bend)
		end = knee.Add(end.Sub(knee).NormalizeOr(dir, epsilon).Scale(lower))

		if end.Distance(foot) < tolerance {
			break
		}
	}

	knee = place(knee, pelvis, dir, bend, dist, upper, lower)
	if !knee.IsFinite() {
		return pelvis.Add(toFoot.Scale(0.5))
	}
	return knee
}

// bendDirection returns the unit direction, perpendicular to dir, in which the
// knee should bend. Poles on the chain axis fall back to world up, then +X.
func bendDirection(pelvis, dir, pole math.Vec3) math.Vec3 {
	candidates := [...]math.Vec3{pole.Sub(pelvis), math.Vec3Up, math.Vec3X}
	for _, c := range candidates {
		perp := c.ProjectOnPlane(dir)
		if perp.Length() > 1e-4 {
			return perp.Normalize()
		}
	}
	return math.Vec3Z
}

// correctTowardsPole keeps the knee in the chain plane and on the pole side of
// the pelvis-foot line, preserving its distance from the pelvis.
func correctTowardsPole(knee, pelvis, dir, normal, bend math.Vec3) math.Vec3 {
	rel := onPlane(knee, pelvis, normal).Sub(pelvis)
	along := rel.Dot(dir)
	side := rel.Dot(bend)
	if side < 0 {
		side = -side
	}
	corrected := dir.Scale(along).Add(bend.Scale(side))
	length := knee.Distance(pelvis)
	return pelvis.Add(corrected.NormalizeOr(bend, epsilon).Scale(length))
}

// place settles the knee on the circle where both bones have their exact
// length, in the chain plane on the bend side. Folded chains, where the foot
// sits on the pelvis, keep the iterated knee.
func place(knee, pelvis, dir, bend math.Vec3, dist, upper, lower float32) math.Vec3 {
	if dist < epsilon {
		return knee
	}
	along := (upper*upper - lower*lower + dist*dist) / (2 * dist)
	along = math.Clamp(along, -upper, upper)
	side := float32(gomath.Sqrt(float64(upper*upper - along*along)))
	return pelvis.Add(dir.Scale(along)).Add(bend.Scale(side))
}

func onPlane(p, anchor, normal math.Vec3) math.Vec3 {
	return anchor.Add(p.Sub(anchor).ProjectOnPlane(normal))
}

// ParabolicLerp interpolates linearly from a to b and lifts the result by
// height * sin(t * pi), which is zero at both ends and height at t = 0.5.
func ParabolicLerp(a, b math.Vec3, height, t float32) math.Vec3 {
	p := a.Lerp(b, t)
	p.Y += height * float32(gomath.Sin(float64(t)*gomath.Pi))
	return p
}
