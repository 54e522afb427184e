package robot

import (
	"github.com/yohamta/donburi/features/events"

	"github.com/Faultbox/strider/pkg/math"
)

// StepStarted is published when a leg lifts its foot.
type StepStarted struct {
	Leg      string
	From, To math.Vec3
}

// StepLanded is published when a leg plants its foot.
type StepLanded struct {
	Leg string
	At  math.Vec3
}

// GaitSwitched is published whenever the orchestrator changes state.
// Forced marks switches made by the stall valve.
type GaitSwitched struct {
	From, To GaitState
	Forced   bool
}

var (
	StepStartedEvent  = events.NewEventType[StepStarted]()
	StepLandedEvent   = events.NewEventType[StepLanded]()
	GaitSwitchedEvent = events.NewEventType[GaitSwitched]()
)
