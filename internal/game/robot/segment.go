package robot

import (
	"go.uber.org/zap"

	"github.com/Faultbox/strider/internal/engine/ecs"
	"github.com/Faultbox/strider/internal/engine/scene"
	"github.com/Faultbox/strider/internal/logger"
	"github.com/Faultbox/strider/pkg/math"
)

// SegmentKind tags Segment components.
const SegmentKind ecs.Kind = "robot.segment"

// SegmentType selects which joints a segment spans.
type SegmentType int

const (
	UpperSegment SegmentType = iota // pelvis to knee
	LowerSegment                    // knee to foot
)

// Segment stretches its entity between two joints of a leg. The mesh is
// assumed to span -1..1 along Y. Segment entities should sit directly under
// the root, since the pose is written as a local transform.
type Segment struct {
	ecs.Base
	Leg  string
	Type SegmentType

	warned bool
}

// NewSegment creates a segment following the named leg entity.
func NewSegment(leg string, typ SegmentType) *Segment {
	return &Segment{Leg: leg, Type: typ}
}

// Kind implements ecs.Component.
func (s *Segment) Kind() ecs.Kind { return SegmentKind }

// Update implements ecs.Component.
func (s *Segment) Update(float64) {
	leg, ok := ecs.ComponentOf[*Leg](s.World().Entity(s.Leg), LegKind)
	if !ok {
		if !s.warned {
			s.warned = true
			logger.Named("robot.segment").Warn("segment leg missing, skipping update",
				zap.String("segment", s.Entity().Name),
				zap.String("leg", s.Leg),
			)
		}
		return
	}

	origin, target := leg.Pelvis(), leg.Knee()
	if s.Type == LowerSegment {
		origin, target = leg.Knee(), leg.FootActual()
	}
	Stretch(s.Transform(), origin, target)
}

// Stretch poses t so a mesh spanning -1..1 along Y reaches from origin to
// target. Coincident points give identity rotation and zero Y scale at origin.
func Stretch(t *scene.Transform, origin, target math.Vec3) {
	d := target.Sub(origin)
	length := d.Length()
	if length < 1e-6 || !d.IsFinite() {
		t.SetPosition(origin)
		t.SetRotation(math.QuatIdentity())
		t.Scale.Y = 0
		return
	}
	t.SetPosition(origin.Add(d.Scale(0.5)))
	t.SetRotation(math.QuatFromTo(math.Vec3Up, d.Scale(1/length)))
	t.Scale.Y = length / 2
}
