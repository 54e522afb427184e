package lighting

import (
	"testing"

	"github.com/Faultbox/strider/pkg/math"
)

func near(a, b math.Vec3) bool {
	d := a.Sub(b)
	return d.Length() < 1e-5
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float32
		want     math.Vec3
	}{
		{"horizon front", 0, 0, math.Vec3{Z: 1}},
		{"horizon right", 90, 0, math.Vec3{X: 1}},
		{"zenith", 0, 90, math.Vec3{Y: 1}},
		{"behind", 180, 0, math.Vec3{Z: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SunDirection(tt.lon, tt.lat); !near(got, tt.want) {
				t.Errorf("SunDirection(%v, %v) = %v, want %v", tt.lon, tt.lat, got, tt.want)
			}
		})
	}
}

func TestDefaultSunIsUnit(t *testing.T) {
	s := DefaultSun()
	if l := s.Direction.Length(); l < 0.9999 || l > 1.0001 {
		t.Fatalf("direction length = %v", l)
	}
	if s.Direction.Y <= 0 {
		t.Fatalf("sun below horizon: %v", s.Direction)
	}
}
