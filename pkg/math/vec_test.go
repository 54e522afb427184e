package math

import (
	"math"
	"testing"
)

func TestVec2Length(t *testing.T) {
	if got := (Vec2{3, 4}).Length(); got != 5 {
		t.Errorf("Vec2.Length() = %v, want 5", got)
	}
}

func TestVec3Cross(t *testing.T) {
	got := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	if got != (Vec3{0, 0, 1}) {
		t.Errorf("Vec3.Cross() = %v, want (0, 0, 1)", got)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero vector should normalize to zero, got %v", got)
	}
	if got := (Vec3{}).NormalizeOr(Vec3Up, 1e-6); got != Vec3Up {
		t.Errorf("NormalizeOr fallback: got %v", got)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{10, 20, 30}
	if got := a.Lerp(b, 0.5); got != (Vec3{5, 10, 15}) {
		t.Errorf("Lerp: got %v, want (5, 10, 15)", got)
	}
}

func TestVec3ProjectOnPlane(t *testing.T) {
	got := Vec3{1, 2, 3}.ProjectOnPlane(Vec3Up)
	if got != (Vec3{1, 0, 3}) {
		t.Errorf("ProjectOnPlane: got %v, want (1, 0, 3)", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec3{nan, 0, 0}).IsFinite() || (Vec3{0, inf, 0}).IsFinite() {
		t.Error("NaN/Inf vector reported finite")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(2, 0, 1) != 1 || Clamp(-1, 0, 1) != 0 || Clamp(0.5, 0, 1) != 0.5 {
		t.Error("Clamp out of range")
	}
}
