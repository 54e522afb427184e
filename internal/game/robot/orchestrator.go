package robot

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/strider/internal/engine/ecs"
	"github.com/Faultbox/strider/internal/logger"
)

// OrchestratorKind tags Orchestrator components.
const OrchestratorKind ecs.Kind = "robot.orchestrator"

// GaitState names the subset of legs allowed to start a step.
type GaitState int

const (
	GaitEven GaitState = iota
	GaitOdd
	GaitAll
	GaitNone
)

func (s GaitState) String() string {
	switch s {
	case GaitEven:
		return "even"
	case GaitOdd:
		return "odd"
	case GaitAll:
		return "all"
	case GaitNone:
		return "none"
	default:
		return fmt.Sprintf("GaitState(%d)", int(s))
	}
}

// ParseGaitState parses the names produced by GaitState.String.
func ParseGaitState(s string) (GaitState, error) {
	for _, g := range [...]GaitState{GaitEven, GaitOdd, GaitAll, GaitNone} {
		if g.String() == s {
			return g, nil
		}
	}
	return GaitEven, fmt.Errorf("unknown gait state %q", s)
}

// Active reports whether the leg at index i belongs to the state's subset.
func (s GaitState) Active(i int) bool {
	switch s {
	case GaitEven:
		return i%2 == 0
	case GaitOdd:
		return i%2 == 1
	case GaitAll:
		return true
	default:
		return false
	}
}

// Next returns the state that follows once the active subset is planted.
func (s GaitState) Next() GaitState {
	switch s {
	case GaitEven, GaitNone:
		return GaitOdd
	default:
		return GaitEven
	}
}

// OrchestratorConfig lists the legs to coordinate, by entity name, in the
// order that defines their parity.
type OrchestratorConfig struct {
	Legs    []string
	Initial GaitState

	// Valve forces GaitAll when the active subset has been stepping for
	// longer than MinSwitchTime seconds.
	Valve         bool
	MinSwitchTime float64
}

// Orchestrator alternates which legs may step. It only reads leg state and
// writes their step gate; it never moves a foot.
type Orchestrator struct {
	ecs.Base
	cfg OrchestratorConfig

	state       GaitState
	sinceSwitch float64

	legs   []*Leg
	warned bool
	log    *zap.Logger
}

// NewOrchestrator creates an orchestrator in cfg.Initial.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		state: cfg.Initial,
		legs:  make([]*Leg, len(cfg.Legs)),
		log:   logger.Named("robot.gait"),
	}
}

// Kind implements ecs.Component.
func (o *Orchestrator) Kind() ecs.Kind { return OrchestratorKind }

// State returns the current gait state.
func (o *Orchestrator) State() GaitState { return o.state }

// SinceSwitch returns the seconds spent in the current state while stepping.
func (o *Orchestrator) SinceSwitch() float64 { return o.sinceSwitch }

// Start applies the initial gate to every leg it can find.
func (o *Orchestrator) Start() {
	if o.resolve() {
		o.setLegStates(o.state)
	}
}

// Update implements ecs.Component.
func (o *Orchestrator) Update(dt float64) {
	if !o.resolve() {
		return
	}

	moving := false
	for i, leg := range o.legs {
		if o.state.Active(i) && leg.Moving() {
			moving = true
			break
		}
	}

	if !moving {
		o.switchTo(o.state.Next(), false)
		return
	}

	o.sinceSwitch += dt
	if o.cfg.Valve && o.sinceSwitch > o.cfg.MinSwitchTime {
		o.switchTo(GaitAll, true)
	}
}

func (o *Orchestrator) switchTo(next GaitState, forced bool) {
	prev := o.state
	o.state = next
	o.sinceSwitch = 0
	o.setLegStates(next)
	if prev == next {
		return
	}
	GaitSwitchedEvent.Publish(o.World().Bus(), GaitSwitched{From: prev, To: next, Forced: forced})
	if forced {
		o.log.Debug("gait valve opened", zap.Stringer("from", prev))
	}
}

func (o *Orchestrator) setLegStates(s GaitState) {
	for i, leg := range o.legs {
		leg.SetAllowStep(s.Active(i))
	}
}

// resolve looks up every leg by name. Legs are re-resolved each frame so
// entities can be replaced; any missing leg skips the frame.
func (o *Orchestrator) resolve() bool {
	w := o.World()
	for i, name := range o.cfg.Legs {
		leg, ok := ecs.ComponentOf[*Leg](w.Entity(name), LegKind)
		if !ok {
			if !o.warned {
				o.warned = true
				o.log.Warn("gait leg missing, skipping update", zap.String("leg", name))
			}
			return false
		}
		o.legs[i] = leg
	}
	return true
}
