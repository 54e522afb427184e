package ik

import (
	gomath "math"
	"math/rand"
	"testing"

	"github.com/Faultbox/strider/pkg/math"
)

// analyticKnee is the law-of-cosines two-bone solution, used as a reference.
func analyticKnee(pelvis, foot, pole math.Vec3, upper, lower float32) math.Vec3 {
	toFoot := foot.Sub(pelvis)
	d := toFoot.Length()
	dir := toFoot.Normalize()
	bend := pole.Sub(pelvis).ProjectOnPlane(dir).Normalize()

	cosA := float64((upper*upper + d*d - lower*lower) / (2 * upper * d))
	cosA = gomath.Max(-1, gomath.Min(1, cosA))
	sinA := gomath.Sqrt(1 - cosA*cosA)

	return pelvis.
		Add(dir.Scale(upper * float32(cosA))).
		Add(bend.Scale(upper * float32(sinA)))
}

func distanceToSegment(p, a, b math.Vec3) float32 {
	ab := b.Sub(a)
	t := math.Clamp(p.Sub(a).Dot(ab)/ab.Dot(ab), 0, 1)
	return p.Distance(a.Add(ab.Scale(t)))
}

func TestSolveUnreachableReturnsMidpoint(t *testing.T) {
	tests := []struct {
		name         string
		pelvis, foot math.Vec3
		upper, lower float32
	}{
		{"straight down", math.Vec3{0, 0, 0}, math.Vec3{0, -5, 0}, 1, 1},
		{"sideways", math.Vec3{1, 2, 3}, math.Vec3{7, 2, 3}, 2, 1.5},
		{"zero bones", math.Vec3{0, 0, 0}, math.Vec3{0, 0, 1}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SolveKnee(tt.pelvis, tt.foot, math.Vec3{0, 10, 10}, tt.upper, tt.lower)
			want := tt.pelvis.Add(tt.foot.Sub(tt.pelvis).Scale(0.5))
			if got != want {
				t.Errorf("got %v, want midpoint %v", got, want)
			}
		})
	}
}

func TestSolveFullyExtendedKneeOnSegment(t *testing.T) {
	pelvis := math.Vec3{0, 0, 0}
	foot := math.Vec3{0, -2, 0}

	knee := SolveKnee(pelvis, foot, math.Vec3{0, 0, 5}, 1, 1)

	if d := distanceToSegment(knee, pelvis, foot); d > 1e-5 {
		t.Errorf("knee %v is %v away from the pelvis-foot segment", knee, d)
	}
	if knee.Distance(math.Vec3{0, -1, 0}) > 1e-5 {
		t.Errorf("knee = %v, want (0, -1, 0)", knee)
	}
}

func TestSolveFullyExtendedUnequalBones(t *testing.T) {
	pelvis := math.Vec3{1, 1, 1}
	foot := math.Vec3{1, 1, 4}

	knee := SolveKnee(pelvis, foot, math.Vec3{1, 5, 2}, 1, 2)

	if d := distanceToSegment(knee, pelvis, foot); d > 1e-5 {
		t.Errorf("knee %v is %v away from the pelvis-foot segment", knee, d)
	}
	if got := knee.Distance(pelvis); gomath.Abs(float64(got-1)) > 1e-5 {
		t.Errorf("upper bone length = %v, want 1", got)
	}
}

func TestSolveMatchesAnalytic(t *testing.T) {
	tests := []struct {
		name               string
		pelvis, foot, pole math.Vec3
		upper, lower       float32
	}{
		{"right angle", math.Vec3{0, 0, 0}, math.Vec3{1, -1, 0}, math.Vec3{2, 1, 0}, 1, 1},
		{"walking stance", math.Vec3{0, 0, 0}, math.Vec3{1.2, -1.5, 0.3}, math.Vec3{4, 1, 1}, 1, 1.2},
		{"deep bend", math.Vec3{0, 0, 0}, math.Vec3{0.4, -0.5, 0}, math.Vec3{3, 0, 0}, 1, 1},
		{"offset pelvis", math.Vec3{3, 1, -2}, math.Vec3{4, -0.2, -1.5}, math.Vec3{8, 3, -2}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SolveKnee(tt.pelvis, tt.foot, tt.pole, tt.upper, tt.lower)
			want := analyticKnee(tt.pelvis, tt.foot, tt.pole, tt.upper, tt.lower)
			if d := got.Distance(want); d > 0.05 {
				t.Errorf("knee = %v, analytic = %v (off by %v)", got, want, d)
			}
			if l := got.Distance(tt.pelvis); gomath.Abs(float64(l-tt.upper)) > 1e-3 {
				t.Errorf("upper bone length = %v, want %v", l, tt.upper)
			}
		})
	}
}

func TestSolveKneeOnPoleSide(t *testing.T) {
	pelvis := math.Vec3{0, 0, 0}
	foot := math.Vec3{0, -1.5, 0}

	for _, pole := range []math.Vec3{{5, 0, 0}, {-5, 0, 0}, {0, 0, 5}, {0, 0, -5}} {
		knee := SolveKnee(pelvis, foot, pole, 1, 1)
		if knee.Dot(pole) <= 0 {
			t.Errorf("pole %v: knee %v bends away from the pole", pole, knee)
		}
	}
}

func TestSolveKneeInPolePlane(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	random := func(scale float32) math.Vec3 {
		return math.Vec3{
			(rng.Float32()*2 - 1) * scale,
			(rng.Float32()*2 - 1) * scale,
			(rng.Float32()*2 - 1) * scale,
		}
	}

	checked := 0
	for i := 0; i < 500; i++ {
		pelvis := random(3)
		foot := pelvis.Add(random(1.2))
		pole := pelvis.Add(random(4))

		normal := foot.Sub(pelvis).Cross(pole.Sub(pelvis))
		if normal.Length() < 1e-2 || foot.Distance(pelvis) < 0.1 {
			continue
		}
		normal = normal.Normalize()

		knee := SolveKnee(pelvis, foot, pole, 1, 1)
		if off := knee.Sub(pelvis).Dot(normal); gomath.Abs(float64(off)) > 1e-3 {
			t.Fatalf("case %d: knee %v is %v off the pelvis/foot/pole plane", i, knee, off)
		}
		checked++
	}
	if checked < 100 {
		t.Fatalf("only %d non-degenerate cases checked", checked)
	}
}

func TestSolveKeepsBothBoneLengths(t *testing.T) {
	check := func(t *testing.T, pelvis, foot, pole math.Vec3, upper, lower float32) {
		t.Helper()
		knee := SolveKnee(pelvis, foot, pole, upper, lower)
		if l := knee.Distance(pelvis); gomath.Abs(float64(l-upper)) > 1e-3 {
			t.Fatalf("SolveKnee(%v, %v, %v): upper bone %v, want %v", pelvis, foot, pole, l, upper)
		}
		if l := knee.Distance(foot); gomath.Abs(float64(l-lower)) > 1e-3 {
			t.Fatalf("SolveKnee(%v, %v, %v): lower bone %v, want %v", pelvis, foot, pole, l, lower)
		}
	}

	t.Run("nearly folded", func(t *testing.T) {
		check(t, math.Vec3{0, 0, 0}, math.Vec3{0, -1.2, 0}, math.Vec3{1, 0, 0}, 1, 1)
		check(t, math.Vec3{0, 0, 0}, math.Vec3{0.05, -0.02, 0}, math.Vec3{0, 1, 1}, 1, 1)
	})

	t.Run("random reachable", func(t *testing.T) {
		rng := rand.New(rand.NewSource(11))
		random := func() math.Vec3 {
			return math.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
		}
		checked := 0
		for i := 0; i < 2000; i++ {
			pelvis := random()
			foot := pelvis.Add(random().Scale(1.2))
			pole := pelvis.Add(random().Scale(3))
			if d := foot.Distance(pelvis); d < 0.02 || d > 1.99 {
				continue
			}
			check(t, pelvis, foot, pole, 1, 1)
			checked++
		}
		if checked < 500 {
			t.Fatalf("only %d reachable cases checked", checked)
		}
	})
}

func TestSolveNeverReturnsNaN(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	points := []math.Vec3{{0, 0, 0}, {0, -1, 0}, {0, 1, 0}, {1, 0, 0}, {0, 0, 1e-7}}
	for i := 0; i < 40; i++ {
		points = append(points, math.Vec3{
			rng.Float32()*4 - 2,
			rng.Float32()*4 - 2,
			rng.Float32()*4 - 2,
		})
	}
	lengths := [][2]float32{{1, 1}, {1, 2}, {0.5, 0.25}, {0, 1}, {0, 0}}

	for _, p := range points {
		for _, f := range points {
			for _, k := range points {
				for _, l := range lengths {
					knee := SolveKnee(p, f, k, l[0], l[1])
					if !knee.IsFinite() {
						t.Fatalf("SolveKnee(%v, %v, %v, %v, %v) = %v", p, f, k, l[0], l[1], knee)
					}
				}
			}
		}
	}
}

func TestSolverZeroValueUsesDefaults(t *testing.T) {
	pelvis := math.Vec3{0, 0, 0}
	foot := math.Vec3{1, -1, 0}
	pole := math.Vec3{2, 1, 0}

	got := Solver{}.Solve(pelvis, foot, pole, 1, 1)
	want := DefaultSolver().Solve(pelvis, foot, pole, 1, 1)
	if got != want {
		t.Errorf("zero Solver = %v, default = %v", got, want)
	}
}

func TestParabolicLerp(t *testing.T) {
	a := math.Vec3{0, 0, 0}
	b := math.Vec3{2, 1, -4}
	const h = 0.75

	if got := ParabolicLerp(a, b, h, 0); got != a {
		t.Errorf("t=0: got %v, want %v", got, a)
	}
	if got := ParabolicLerp(a, b, h, 1); got.Distance(b) > 1e-6 {
		t.Errorf("t=1: got %v, want %v", got, b)
	}

	mid := ParabolicLerp(a, b, h, 0.5)
	linear := a.Lerp(b, 0.5)
	if gomath.Abs(float64(mid.Y-linear.Y-h)) > 1e-6 {
		t.Errorf("t=0.5: height offset %v, want %v", mid.Y-linear.Y, h)
	}
	if mid.X != linear.X || mid.Z != linear.Z {
		t.Errorf("t=0.5: horizontal %v, want %v", mid, linear)
	}
}
