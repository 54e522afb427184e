package game

import (
	"fmt"

	"github.com/yohamta/donburi"
	"go.uber.org/zap"

	"github.com/Faultbox/strider/internal/config"
	"github.com/Faultbox/strider/internal/engine/ecs"
	"github.com/Faultbox/strider/internal/engine/lighting"
	"github.com/Faultbox/strider/internal/engine/metrics"
	"github.com/Faultbox/strider/internal/engine/scene"
	"github.com/Faultbox/strider/internal/game/robot"
	"github.com/Faultbox/strider/internal/logger"
	"github.com/Faultbox/strider/pkg/math"
)

// View is an extra camera drawn into part of the window.
type View struct {
	Camera   string
	Viewport [4]float32
}

// Simulation is the window-independent part of the game: scene graph,
// entities and the walking robot.
type Simulation struct {
	Graph  *scene.Graph
	World  *ecs.World
	Robot  *robot.Robot
	Follow *robot.FollowCamera
	Views  []View

	lights  []lightSource
	metrics *metrics.Collector
	log     *zap.Logger
	frames  uint64
}

// lightSource is a configured light, optionally carried by an entity.
type lightSource struct {
	light  lighting.Light
	attach string
	warned bool
}

// NewSimulation builds the scene described by cfg. in may be nil for a robot
// that only walks in place; m may be nil to skip metrics.
func NewSimulation(cfg *config.Config, in robot.AxisSource, m *metrics.Collector) (*Simulation, error) {
	s := &Simulation{
		Graph:   scene.NewGraph(),
		metrics: m,
		log:     logger.Named("simulation"),
	}
	s.World = ecs.NewWorld(s.Graph)
	s.World.MaxDelta = cfg.Engine.MaxFrameTime

	if err := s.Graph.Resize(scene.DefaultCamera, cfg.Window.Width, cfg.Window.Height); err != nil {
		return nil, err
	}
	for _, c := range linkOrder(cfg.Cameras) {
		if err := s.addCamera(c); err != nil {
			return nil, fmt.Errorf("camera %s: %w", c.ID, err)
		}
	}

	params, err := robotParams(cfg)
	if err != nil {
		return nil, err
	}
	params.Input = in
	if s.Robot, err = robot.Build(s.World, params); err != nil {
		return nil, fmt.Errorf("build robot: %w", err)
	}

	env := robot.DefaultEnvParams()
	env.GroundY = cfg.Robot.GroundY
	env.PlatformRadius = cfg.Environment.PlatformRadius
	env.Stars = cfg.Environment.Stars
	env.Seed = cfg.Environment.Seed
	env.DysonSpheres = cfg.Environment.DysonSpheres
	env.DysonRadius = cfg.Environment.DysonRadius
	if err := robot.BuildEnvironment(s.World, env); err != nil {
		return nil, fmt.Errorf("build environment: %w", err)
	}

	if s.Follow, err = robot.AttachFollowCamera(s.World, robot.BodyEntity, 0.5); err != nil {
		return nil, err
	}

	if s.lights, err = lightSources(cfg.Lights); err != nil {
		return nil, err
	}

	s.subscribe()
	s.log.Info("simulation ready",
		zap.Int("entities", s.World.Len()),
		zap.Int("nodes", s.Graph.Len()),
		zap.Int("legs", len(s.Robot.Legs)),
		zap.Int("lights", len(s.lights)),
	)
	return s, nil
}

func lightSources(cfgs []config.LightConfig) ([]lightSource, error) {
	out := make([]lightSource, 0, len(cfgs))
	for i, c := range cfgs {
		typ, err := lighting.ParseType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		out = append(out, lightSource{
			attach: c.Attach,
			light: lighting.Light{
				Type:      typ,
				Position:  math.Vec3{X: c.Position[0], Y: c.Position[1], Z: c.Position[2]},
				Color:     math.Vec3{X: c.Color[0], Y: c.Color[1], Z: c.Color[2]},
				Intensity: c.Intensity,
				Range:     c.Range,
			},
		})
	}
	return out, nil
}

// Lights refills b with the configured lights in world space. Lights attached
// to a missing entity are skipped with a single warning.
func (s *Simulation) Lights(b *lighting.Buffer) {
	b.Clear()
	for i := range s.lights {
		src := &s.lights[i]
		l := src.light
		if src.attach != "" {
			e := s.World.Entity(src.attach)
			if e == nil {
				if !src.warned {
					src.warned = true
					s.log.Warn("light target missing", zap.String("entity", src.attach))
				}
				continue
			}
			m := e.Transform().WorldMatrix()
			if l.Type == lighting.Directional {
				l.Position = m.TransformDirectionVec3(l.Position).Normalize()
			} else {
				l.Position = m.TransformVec3(l.Position)
			}
		}
		if !b.Add(l) {
			return
		}
	}
}

// linkOrder sorts cameras so every link target is registered before the
// cameras linked to it. Cameras with unresolvable links keep their relative
// order at the end and fail on registration.
func linkOrder(cams []config.CameraConfig) []config.CameraConfig {
	known := map[string]bool{scene.DefaultCamera: true}
	out := make([]config.CameraConfig, 0, len(cams))
	pending := cams
	for len(pending) > 0 {
		var rest []config.CameraConfig
		for _, c := range pending {
			if c.LinkTo == "" || known[c.LinkTo] {
				known[c.ID] = true
				out = append(out, c)
			} else {
				rest = append(rest, c)
			}
		}
		if len(rest) == len(pending) {
			return append(out, rest...)
		}
		pending = rest
	}
	return out
}

func (s *Simulation) addCamera(c config.CameraConfig) error {
	cc := scene.CameraConfig{
		FOV:        c.FOV,
		Extent:     c.Extent,
		Aspect:     1,
		Near:       c.Near,
		Far:        c.Far,
		LinkTo:     c.LinkTo,
		LinkFactor: c.LinkFactor,
	}
	switch c.Projection {
	case "orthographic":
		cc.Projection = scene.Orthographic
	case "perspective":
		cc.Projection = scene.Perspective
	default:
		return fmt.Errorf("unknown projection %q", c.Projection)
	}
	if _, err := s.World.CreateCamera(c.ID, cc); err != nil {
		return err
	}

	pos := math.Vec3{X: c.Position[0], Y: c.Position[1], Z: c.Position[2]}
	rot := math.QuatFromAxisAngle(math.Vec3Up, math.Radians(c.Yaw)).
		Mul(math.QuatFromAxisAngle(math.Vec3X, -math.Radians(c.Pitch)))
	if err := s.Graph.SetCameraPosition(c.ID, pos); err != nil {
		return err
	}
	if err := s.Graph.SetCameraRotation(c.ID, rot); err != nil {
		return err
	}
	s.Views = append(s.Views, View{Camera: c.ID, Viewport: c.Viewport})
	return nil
}

func robotParams(cfg *config.Config) (robot.Params, error) {
	ease, err := robot.EaseFunc(cfg.Robot.Easing)
	if err != nil {
		return robot.Params{}, err
	}
	initial, err := robot.ParseGaitState(cfg.Gait.Initial)
	if err != nil {
		return robot.Params{}, err
	}

	p := robot.DefaultParams()
	r := cfg.Robot
	p.Legs = r.Legs
	p.HipRadius = r.HipRadius
	p.SegmentLength = r.SegmentLength
	p.SegmentSize = r.SegmentSize
	p.FootReach = r.FootReach
	p.GroundY = r.GroundY
	p.StepSpeed = r.StepSpeed
	p.StepHeight = r.StepHeight
	p.StepDistance = r.StepDistance
	p.Ease = ease
	p.BobAmplitude = r.BobAmplitude
	p.BobFrequency = r.BobFrequency
	p.AxisSet = r.AxisSet
	p.MoveSpeed = r.MoveSpeed
	p.TurnSpeed = r.TurnSpeed
	p.WalkableRadius = r.WalkableRadius
	p.DebugMarkers = r.DebugMarkers
	p.Gait.Initial = initial
	p.Gait.Valve = cfg.Gait.Valve
	p.Gait.MinSwitchTime = cfg.Gait.MinSwitchTime
	return p, nil
}

func (s *Simulation) subscribe() {
	bus := s.World.Bus()
	robot.StepStartedEvent.Subscribe(bus, func(_ donburi.World, e robot.StepStarted) {
		s.metrics.StepStarted(e.Leg)
	})
	robot.StepLandedEvent.Subscribe(bus, func(_ donburi.World, e robot.StepLanded) {
		s.metrics.StepLanded(e.Leg)
	})
	robot.GaitSwitchedEvent.Subscribe(bus, func(_ donburi.World, e robot.GaitSwitched) {
		s.metrics.GaitSwitched(e.To.String(), e.Forced)
		if e.Forced {
			s.log.Debug("gait forced",
				zap.Stringer("from", e.From),
				zap.Stringer("to", e.To),
			)
		}
	})
}

// Step advances the simulation by dt seconds.
func (s *Simulation) Step(dt float64) {
	s.World.Update(dt)
	s.frames++
	s.metrics.ObserveFrame(s.World.ClampDelta(dt))
	s.metrics.SetEntities(s.World.Len())
}

// Frames returns the number of completed steps.
func (s *Simulation) Frames() uint64 { return s.frames }

// Resize updates the main camera aspect and every camera linked to it.
func (s *Simulation) Resize(width, height int) error {
	return s.Graph.Resize(scene.DefaultCamera, width, height)
}
