package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/strider/pkg/math"
)

func TestAxis(t *testing.T) {
	tests := []struct {
		name string
		set  string
		down []sdl.Scancode
		want math.Vec2
	}{
		{"idle", AxisWASD, nil, math.Vec2{}},
		{"forward", AxisWASD, []sdl.Scancode{sdl.SCANCODE_W}, math.Vec2{Y: 1}},
		{"back left", AxisWASD, []sdl.Scancode{sdl.SCANCODE_S, sdl.SCANCODE_A}, math.Vec2{X: -1, Y: -1}},
		{"opposites cancel", AxisWASD, []sdl.Scancode{sdl.SCANCODE_A, sdl.SCANCODE_D}, math.Vec2{}},
		{"arrows right", AxisArrows, []sdl.Scancode{sdl.SCANCODE_RIGHT}, math.Vec2{X: 1}},
		{"other set ignored", AxisArrows, []sdl.Scancode{sdl.SCANCODE_W}, math.Vec2{}},
		{"unknown set", "gamepad", []sdl.Scancode{sdl.SCANCODE_W}, math.Vec2{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New()
			for _, k := range tt.down {
				in.Push(Event{Type: EventKeyDown, Key: k})
			}
			if got := in.Axis(tt.set); got != tt.want {
				t.Errorf("Axis(%q) = %v, want %v", tt.set, got, tt.want)
			}
		})
	}
}

func TestKeyRelease(t *testing.T) {
	in := New()
	in.Push(Event{Type: EventKeyDown, Key: sdl.SCANCODE_W})
	if !in.IsKeyHeld(sdl.SCANCODE_W) || !in.IsKeyPressed(sdl.SCANCODE_W) {
		t.Fatal("W should be held and pressed")
	}
	in.Push(Event{Type: EventKeyUp, Key: sdl.SCANCODE_W})
	if in.IsKeyHeld(sdl.SCANCODE_W) {
		t.Fatal("W still held after release")
	}
	if got := in.Axis(AxisWASD); got != (math.Vec2{}) {
		t.Fatalf("Axis after release = %v", got)
	}
}
