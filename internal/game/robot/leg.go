// Package robot implements the walking robot: IK legs, the gait orchestrator
// that gates their steps, the segments that visualise them, and the simple
// motion components that move the body and camera.
package robot

import (
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"

	"github.com/Faultbox/strider/internal/engine/ecs"
	"github.com/Faultbox/strider/internal/logger"
	"github.com/Faultbox/strider/pkg/ik"
	"github.com/Faultbox/strider/pkg/math"
)

// LegKind tags Leg components.
const LegKind ecs.Kind = "robot.leg"

// landEpsilon is the distance at which a stepping foot counts as planted.
const landEpsilon = 0.01

// LegConfig wires a leg to its reference entities and shapes its steps.
type LegConfig struct {
	// Pelvis is the entity the leg hangs from; KneeTarget is the pole the
	// knee bends towards.
	Pelvis     string
	KneeTarget string

	// FootOffset is rotated by the pelvis orientation to give the rest
	// position of the foot. Its Y is replaced by GroundY.
	FootOffset math.Vec3
	GroundY    float32

	UpperLength float32
	LowerLength float32

	StepSpeed  float32
	StepHeight float32
	// StepDistance is how far the ideal foot may drift before a step.
	// Zero means UpperLength + LowerLength.
	StepDistance float32

	// Ease shapes step progress. Nil means linear.
	Ease ease.TweenFunc

	Solver ik.Solver

	// Optional marker entities that mirror the solver state.
	IdealMarker  string
	ActualMarker string
	KneeMarker   string
}

// Leg drives one foot through IDLE and STEPPING and solves its knee every
// frame.
type Leg struct {
	ecs.Base
	cfg LegConfig

	pelvis     math.Vec3
	footIdeal  math.Vec3
	footActual math.Vec3
	knee       math.Vec3

	moving    bool
	progress  float32
	stepStart math.Vec3
	stepEnd   math.Vec3
	allowStep bool

	initialized bool
	warned      bool
	log         *zap.Logger
}

// NewLeg creates a leg. Steps are allowed until an orchestrator says otherwise.
func NewLeg(cfg LegConfig) *Leg {
	if cfg.StepDistance <= 0 {
		cfg.StepDistance = cfg.UpperLength + cfg.LowerLength
	}
	if cfg.Ease == nil {
		cfg.Ease = ease.Linear
	}
	return &Leg{
		cfg:       cfg,
		allowStep: true,
		log:       logger.Named("robot.leg"),
	}
}

// Kind implements ecs.Component.
func (l *Leg) Kind() ecs.Kind { return LegKind }

// Config returns the leg configuration with defaults applied.
func (l *Leg) Config() LegConfig { return l.cfg }

// Pelvis returns the pelvis world position seen on the last update.
func (l *Leg) Pelvis() math.Vec3 { return l.pelvis }

// FootIdeal returns where the foot would rest under the current body pose.
func (l *Leg) FootIdeal() math.Vec3 { return l.footIdeal }

// FootActual returns the rendered foot position.
func (l *Leg) FootActual() math.Vec3 { return l.footActual }

// Knee returns the solved knee position.
func (l *Leg) Knee() math.Vec3 { return l.knee }

// Moving reports whether the leg is mid-step.
func (l *Leg) Moving() bool { return l.moving }

// Progress returns the step progress in [0, 1]; zero while idle.
func (l *Leg) Progress() float32 { return l.progress }

// AllowStep reports whether the leg may start a new step.
func (l *Leg) AllowStep() bool { return l.allowStep }

// SetAllowStep gates new steps. A step in progress always finishes.
func (l *Leg) SetAllowStep(allow bool) { l.allowStep = allow }

// Update implements ecs.Component.
func (l *Leg) Update(dt float64) {
	w := l.World()
	pelvisEntity := w.Entity(l.cfg.Pelvis)
	kneeEntity := w.Entity(l.cfg.KneeTarget)
	if pelvisEntity == nil || kneeEntity == nil {
		l.warnMissing(pelvisEntity == nil, kneeEntity == nil)
		return
	}

	pt := pelvisEntity.Transform()
	l.pelvis = pt.WorldPosition()
	ideal := l.pelvis.Add(pt.WorldRotation().Rotate(l.cfg.FootOffset))
	ideal.Y = l.cfg.GroundY
	l.footIdeal = ideal

	if !l.initialized {
		l.plant(ideal)
		l.initialized = true
	}

	if !l.moving && l.allowStep && ideal.Distance(l.footActual) > l.cfg.StepDistance {
		l.moving = true
		l.progress = 0
		l.stepStart = l.footActual
		l.stepEnd = ideal
		StepStartedEvent.Publish(w.Bus(), StepStarted{Leg: l.Entity().Name, From: l.stepStart, To: l.stepEnd})
	}

	if l.moving {
		l.advance(float32(dt))
	}

	l.knee = l.cfg.Solver.Solve(l.pelvis, l.footActual, kneeEntity.Transform().WorldPosition(), l.cfg.UpperLength, l.cfg.LowerLength)
	l.updateMarkers()
}

func (l *Leg) advance(dt float32) {
	rate := math.Clamp(dt*l.cfg.StepSpeed, 0, 1)
	l.stepEnd = l.stepEnd.Lerp(l.footIdeal, rate)
	l.progress = math.Clamp(l.progress+rate, 0, 1)

	t := l.cfg.Ease(l.progress, 0, 1, 1)
	l.footActual = ik.ParabolicLerp(l.stepStart, l.stepEnd, l.cfg.StepHeight, t)

	if l.stepEnd.Distance(l.footActual) < landEpsilon {
		l.plant(l.footActual)
		StepLandedEvent.Publish(l.World().Bus(), StepLanded{Leg: l.Entity().Name, At: l.footActual})
	}
}

func (l *Leg) plant(at math.Vec3) {
	l.moving = false
	l.progress = 0
	l.footActual = at
	l.stepStart = at
	l.stepEnd = at
}

func (l *Leg) updateMarkers() {
	w := l.World()
	for _, m := range [...]struct {
		name string
		pos  math.Vec3
	}{
		{l.cfg.IdealMarker, l.footIdeal},
		{l.cfg.ActualMarker, l.footActual},
		{l.cfg.KneeMarker, l.knee},
	} {
		if m.name == "" {
			continue
		}
		if e := w.Entity(m.name); e != nil {
			e.Transform().SetPosition(m.pos)
		}
	}
}

func (l *Leg) warnMissing(pelvis, knee bool) {
	if l.warned {
		return
	}
	l.warned = true
	l.log.Warn("leg reference missing, skipping update",
		zap.String("leg", l.Entity().Name),
		zap.Bool("pelvis_missing", pelvis),
		zap.Bool("knee_target_missing", knee),
	)
}
