package robot

import (
	"fmt"
	gomath "math"
	"math/rand"

	"github.com/tanema/gween/ease"

	"github.com/Faultbox/strider/internal/engine/ecs"
	"github.com/Faultbox/strider/pkg/ik"
	"github.com/Faultbox/strider/pkg/math"
)

// Entity names used by the builders.
const (
	BodyEntity = "robot"
	GaitEntity = "robot_gait"
)

// LegEntity returns the entity name of leg i.
func LegEntity(i int) string { return fmt.Sprintf("robot_leg_%d", i) }

// Params sizes the robot and its gait.
type Params struct {
	Legs          int
	HipRadius     float32 // distance from the body centre to each hip
	HipHeight     float32 // hip offset below the body centre
	SegmentLength float32
	SegmentSize   float32
	FootReach     float32 // horizontal distance from hip to resting foot
	GroundY       float32

	StepSpeed    float32
	StepHeight   float32
	StepDistance float32
	Ease         ease.TweenFunc

	Gait OrchestratorConfig

	BobAmplitude float32
	BobFrequency float32

	Input          AxisSource
	AxisSet        string
	MoveSpeed      float32
	TurnSpeed      float32
	WalkableRadius float32

	DebugMarkers bool
}

// DefaultParams returns an eight-legged robot standing on y = -1.5.
func DefaultParams() Params {
	return Params{
		Legs:          8,
		HipRadius:     1,
		HipHeight:     0.25,
		SegmentLength: 1,
		SegmentSize:   0.25,
		FootReach:     1.2,
		GroundY:       -1.5,
		StepSpeed:     4,
		StepHeight:    0.5,
		StepDistance:  0.9,
		Ease:          ease.Linear,
		Gait: OrchestratorConfig{
			Initial:       GaitEven,
			Valve:         true,
			MinSwitchTime: 1,
		},
		BobAmplitude:   0.2,
		BobFrequency:   3,
		AxisSet:        "wasd",
		MoveSpeed:      3,
		TurnSpeed:      1.5,
		WalkableRadius: 20,
	}
}

// Robot gives access to the built entities.
type Robot struct {
	Body         *ecs.Entity
	Legs         []*Leg
	Orchestrator *Orchestrator
}

// Build creates the robot body, its legs and segments, and the gait
// orchestrator. The orchestrator entity is registered after every leg so it
// reads this frame's step state.
func Build(w *ecs.World, p Params) (*Robot, error) {
	if p.Legs < 1 {
		return nil, fmt.Errorf("robot needs at least one leg, got %d", p.Legs)
	}

	comps := []ecs.Component{}
	if p.BobFrequency > 0 && p.BobAmplitude != 0 {
		comps = append(comps, NewBob(p.BobAmplitude, p.BobFrequency))
	}
	if p.Input != nil {
		comps = append(comps, &PlayerController{
			Input:          p.Input,
			AxisSet:        p.AxisSet,
			MoveSpeed:      p.MoveSpeed,
			TurnSpeed:      p.TurnSpeed,
			WalkableRadius: p.WalkableRadius,
		})
	}
	body, err := w.CreateEntity(ecs.EntityDesc{Name: BodyEntity, Components: comps})
	if err != nil {
		return nil, err
	}

	shells := []ecs.EntityDesc{
		{Name: "robot_shell", Parent: body, Scale: math.Vec3{1, 0.45, 1}, Mesh: "cube", Material: "robot_outers"},
		{Name: "robot_core", Parent: body, Scale: math.Vec3{0.7, 0.7, 0.7}, Mesh: "sphere", Material: "robot_inners"},
	}
	for _, d := range shells {
		if _, err := w.CreateEntity(d); err != nil {
			return nil, err
		}
	}

	r := &Robot{Body: body}
	names := make([]string, p.Legs)
	for i := 0; i < p.Legs; i++ {
		leg, err := buildLeg(w, body, i, p)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
		r.Legs = append(r.Legs, leg)
		names[i] = LegEntity(i)
	}

	gait := p.Gait
	gait.Legs = names
	r.Orchestrator = NewOrchestrator(gait)
	if _, err := w.CreateEntity(ecs.EntityDesc{Name: GaitEntity, Components: []ecs.Component{r.Orchestrator}}); err != nil {
		return nil, err
	}
	return r, nil
}

func buildLeg(w *ecs.World, body *ecs.Entity, i int, p Params) (*Leg, error) {
	theta := float64(i) / float64(p.Legs) * 2 * gomath.Pi
	radial := math.Vec3{X: float32(gomath.Cos(theta)), Z: float32(gomath.Sin(theta))}

	name := LegEntity(i)
	cfg := LegConfig{
		Pelvis:       name + "_pelvis",
		KneeTarget:   name + "_knee",
		FootOffset:   radial.Scale(p.FootReach),
		GroundY:      p.GroundY,
		UpperLength:  p.SegmentLength,
		LowerLength:  p.SegmentLength,
		StepSpeed:    p.StepSpeed,
		StepHeight:   p.StepHeight,
		StepDistance: p.StepDistance,
		Ease:         p.Ease,
		Solver:       ik.DefaultSolver(),
	}
	if p.DebugMarkers {
		cfg.IdealMarker = name + "_foot_ideal_marker"
		cfg.ActualMarker = name + "_foot_actual_marker"
		cfg.KneeMarker = name + "_knee_actual_marker"
	}
	leg := NewLeg(cfg)

	base, err := w.CreateEntity(ecs.EntityDesc{
		Name:       name,
		Parent:     body,
		Position:   radial.Scale(p.HipRadius),
		Components: []ecs.Component{leg},
	})
	if err != nil {
		return nil, err
	}

	segScale := math.Vec3{p.SegmentSize, p.SegmentLength / 2, p.SegmentSize}
	joint := math.Vec3{p.SegmentSize, p.SegmentSize, p.SegmentSize}
	descs := []ecs.EntityDesc{
		{Name: name + "_upper", Scale: segScale, Mesh: "cube", Material: "robot_inners",
			Components: []ecs.Component{NewSegment(name, UpperSegment)}},
		{Name: name + "_lower", Scale: segScale, Mesh: "cube", Material: "robot_outers",
			Components: []ecs.Component{NewSegment(name, LowerSegment)}},
	}
	for _, d := range descs {
		if _, err := w.CreateEntity(d); err != nil {
			return nil, err
		}
	}

	hip := math.Vec3{Y: -p.HipHeight}
	joints := []ecs.EntityDesc{
		{Name: cfg.Pelvis, Parent: base, Position: hip, Scale: joint, Mesh: "sphere", Material: "robot_outers"},
		// Outside and above the hip, so knees bend outwards.
		{Name: cfg.KneeTarget, Parent: base, Position: hip.Add(radial.Scale(2 * p.SegmentLength)).Add(math.Vec3{Y: p.SegmentLength})},
	}
	for _, d := range joints {
		if _, err := w.CreateEntity(d); err != nil {
			return nil, err
		}
	}

	if p.DebugMarkers {
		markers := []ecs.EntityDesc{
			{Name: cfg.IdealMarker, Scale: math.Vec3{0.1, 0.1, 0.1}, Mesh: "sphere", Material: "red"},
			{Name: cfg.ActualMarker, Scale: joint, Mesh: "sphere", Material: "robot_outers"},
			{Name: cfg.KneeMarker, Scale: joint, Mesh: "sphere", Material: "robot_outers"},
		}
		for _, d := range markers {
			if _, err := w.CreateEntity(d); err != nil {
				return nil, err
			}
		}
	}
	return leg, nil
}

// EnvParams sizes the static surroundings.
type EnvParams struct {
	GroundY        float32
	PlatformRadius float32
	Stars          int
	StarMinRadius  float32
	StarMaxRadius  float32
	StarMaxSize    float32
	Seed           int64

	DysonSpheres int
	DysonRadius  float32 // ring radius around the origin
	DysonScale   float32
}

// DefaultEnvParams matches DefaultParams.
func DefaultEnvParams() EnvParams {
	return EnvParams{
		GroundY:        -1.5,
		PlatformRadius: 23,
		Stars:          300,
		StarMinRadius:  50,
		StarMaxRadius:  80,
		StarMaxSize:    0.5,
		Seed:           1,
		DysonSpheres:   10,
		DysonRadius:    40,
		DysonScale:     1,
	}
}

// Entity names and spin rates of the Dyson sphere ring.
const (
	DysonParentEntity = "dyson_sphere_parent"

	dysonRingSpeed  = 8 * gomath.Pi / 180
	dysonShellSpeed = 30 * gomath.Pi / 180
)

// DysonEntity returns the entity name of Dyson sphere i. Its shell is named
// with an "_outer" suffix.
func DysonEntity(i int) string { return fmt.Sprintf("dyson_sphere_%d", i) }

// BuildEnvironment creates the walking platform, a slowly turning star field
// and a ring of Dyson spheres whose shells spin about a diagonal axis.
func BuildEnvironment(w *ecs.World, p EnvParams) error {
	s := p.PlatformRadius
	if _, err := w.CreateEntity(ecs.EntityDesc{
		Name:     "platform",
		Position: math.Vec3{Y: p.GroundY},
		Scale:    math.Vec3{s, 1, s},
		Mesh:     "plane",
		Material: "platform",
	}); err != nil {
		return err
	}

	stars, err := w.CreateEntity(ecs.EntityDesc{
		Name:       "star_parent",
		Components: []ecs.Component{NewRotate(math.Vec3Up, 0.05)},
	})
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(p.Seed))
	for i := 0; i < p.Stars; i++ {
		theta := rng.Float64() * gomath.Pi
		phi := rng.Float64() * 2 * gomath.Pi
		r := p.StarMinRadius + rng.Float32()*(p.StarMaxRadius-p.StarMinRadius)
		pos := math.Vec3{
			X: r * float32(gomath.Sin(theta)*gomath.Cos(phi)),
			Y: r * float32(gomath.Sin(theta)*gomath.Sin(phi)),
			Z: r * float32(gomath.Cos(theta)),
		}
		size := 0.05 + rng.Float32()*p.StarMaxSize
		if _, err := w.CreateEntity(ecs.EntityDesc{
			Name:       fmt.Sprintf("star_%d", i),
			Parent:     stars,
			Position:   pos,
			Scale:      math.Vec3{size, size, size},
			Mesh:       "sphere",
			Material:   "star",
			Components: []ecs.Component{NewRotate(math.Vec3Up, 0.5)},
		}); err != nil {
			return err
		}
	}
	return buildDysonRing(w, p)
}

func buildDysonRing(w *ecs.World, p EnvParams) error {
	if p.DysonSpheres <= 0 {
		return nil
	}
	ring, err := w.CreateEntity(ecs.EntityDesc{
		Name:       DysonParentEntity,
		Components: []ecs.Component{NewRotate(math.Vec3Up, dysonRingSpeed)},
	})
	if err != nil {
		return err
	}

	s := p.DysonScale
	diagonal := math.Vec3{X: 1, Y: 1, Z: 1}
	for i := 0; i < p.DysonSpheres; i++ {
		theta := float64(i) / float64(p.DysonSpheres) * 2 * gomath.Pi
		core, err := w.CreateEntity(ecs.EntityDesc{
			Name:     DysonEntity(i),
			Parent:   ring,
			Position: math.Vec3{X: p.DysonRadius * float32(gomath.Cos(theta)), Z: p.DysonRadius * float32(gomath.Sin(theta))},
			Scale:    math.Vec3{s, s, s},
			Mesh:     "sphere",
			Material: "black_hole",
		})
		if err != nil {
			return err
		}
		if _, err := w.CreateEntity(ecs.EntityDesc{
			Name:       DysonEntity(i) + "_outer",
			Parent:     core,
			Scale:      math.Vec3{2, 2, 2},
			Mesh:       "cube",
			Material:   "platform",
			Components: []ecs.Component{NewRotate(diagonal, dysonShellSpeed)},
		}); err != nil {
			return err
		}
	}
	return nil
}

// AttachFollowCamera makes the default camera orbit target.
func AttachFollowCamera(w *ecs.World, target string, lookHeight float32) (*FollowCamera, error) {
	cam := w.Entity(ecs.CameraEntity)
	if cam == nil {
		return nil, fmt.Errorf("camera entity %q missing", ecs.CameraEntity)
	}
	f := NewFollowCamera(target)
	f.LookHeight = lookHeight
	if err := w.AddComponent(cam, f); err != nil {
		return nil, err
	}
	return f, nil
}

// EaseFunc maps a config name to an easing function.
func EaseFunc(name string) (ease.TweenFunc, error) {
	switch name {
	case "", "linear":
		return ease.Linear, nil
	case "in-out-sine":
		return ease.InOutSine, nil
	case "in-out-quad":
		return ease.InOutQuad, nil
	case "in-out-cubic":
		return ease.InOutCubic, nil
	case "out-quad":
		return ease.OutQuad, nil
	default:
		return nil, fmt.Errorf("unknown easing %q", name)
	}
}
