package robot

import (
	"testing"

	"github.com/yohamta/donburi"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/strider/internal/engine/ecs"
	"github.com/Faultbox/strider/internal/engine/scene"
	"github.com/Faultbox/strider/internal/logger"
	"github.com/Faultbox/strider/pkg/ik"
	"github.com/Faultbox/strider/pkg/math"
)

const frame = 0.05

func testLegConfig() LegConfig {
	return LegConfig{
		Pelvis:       "pelvis",
		KneeTarget:   "knee",
		FootOffset:   math.Vec3{X: 1},
		GroundY:      -1.5,
		UpperLength:  1,
		LowerLength:  1,
		StepSpeed:    2,
		StepHeight:   0.5,
		StepDistance: 0.5,
	}
}

func mustCreate(t *testing.T, w *ecs.World, d ecs.EntityDesc) *ecs.Entity {
	t.Helper()
	e, err := w.CreateEntity(d)
	if err != nil {
		t.Fatalf("CreateEntity(%q): %v", d.Name, err)
	}
	return e
}

type stepLog struct {
	started []StepStarted
	landed  []StepLanded
}

func record(w *ecs.World) *stepLog {
	l := &stepLog{}
	StepStartedEvent.Subscribe(w.Bus(), func(_ donburi.World, e StepStarted) { l.started = append(l.started, e) })
	StepLandedEvent.Subscribe(w.Bus(), func(_ donburi.World, e StepLanded) { l.landed = append(l.landed, e) })
	return l
}

// legRig builds a pelvis at the origin with a knee target out along +X and a
// single leg following it.
func legRig(t *testing.T, cfg LegConfig) (*ecs.World, *ecs.Entity, *Leg) {
	t.Helper()
	w := ecs.NewWorld(scene.NewGraph())
	pelvis := mustCreate(t, w, ecs.EntityDesc{Name: "pelvis"})
	mustCreate(t, w, ecs.EntityDesc{Name: "knee", Parent: pelvis, Position: math.Vec3{X: 2, Y: 1}})
	leg := NewLeg(cfg)
	mustCreate(t, w, ecs.EntityDesc{Name: "leg", Components: []ecs.Component{leg}})
	w.Start()
	return w, pelvis, leg
}

func TestLegPlantsOnFirstFrame(t *testing.T) {
	w, _, leg := legRig(t, testLegConfig())
	w.Update(frame)

	want := math.Vec3{X: 1, Y: -1.5}
	if leg.FootIdeal() != want || leg.FootActual() != want {
		t.Errorf("ideal %v, actual %v, want both %v", leg.FootIdeal(), leg.FootActual(), want)
	}
	if leg.Moving() || leg.Progress() != 0 {
		t.Errorf("moving = %v, progress = %v", leg.Moving(), leg.Progress())
	}
	if d := leg.Knee().Distance(leg.Pelvis()); d < 0.999 || d > 1.001 {
		t.Errorf("upper bone length %v", d)
	}
}

func TestLegIdleIsIdempotent(t *testing.T) {
	w, _, leg := legRig(t, testLegConfig())
	steps := record(w)

	w.Update(frame)
	planted := leg.FootActual()
	for i := 0; i < 200; i++ {
		w.Update(frame)
		if leg.Moving() {
			t.Fatalf("frame %d: idle leg started stepping", i)
		}
	}
	if leg.FootActual() != planted {
		t.Errorf("foot drifted from %v to %v", planted, leg.FootActual())
	}
	if len(steps.started) != 0 {
		t.Errorf("published %d step events", len(steps.started))
	}
}

func TestLegStepArc(t *testing.T) {
	w, pelvis, leg := legRig(t, testLegConfig())
	steps := record(w)
	w.Update(frame)

	pelvis.Transform().SetPosition(math.Vec3{X: 1})
	w.Update(frame)
	if !leg.Moving() {
		t.Fatal("leg did not start a step after the body moved")
	}
	if len(steps.started) != 1 || steps.started[0].Leg != "leg" {
		t.Fatalf("step started events = %+v", steps.started)
	}
	if got := steps.started[0].From; got != (math.Vec3{X: 1, Y: -1.5}) {
		t.Errorf("step from %v", got)
	}

	peak := leg.FootActual().Y
	for i := 0; i < 40 && leg.Moving(); i++ {
		w.Update(frame)
		if y := leg.FootActual().Y; y > peak {
			peak = y
		}
		if !leg.Knee().IsFinite() {
			t.Fatalf("knee not finite: %v", leg.Knee())
		}
	}

	if leg.Moving() {
		t.Fatal("step never completed")
	}
	if d := leg.FootActual().Distance(math.Vec3{X: 2, Y: -1.5}); d > 0.01 {
		t.Errorf("landed at %v", leg.FootActual())
	}
	if peak < -1.0-1e-3 || peak > -1.0+1e-3 {
		t.Errorf("arc peak y = %v, want -1.0", peak)
	}
	if len(steps.landed) != 1 {
		t.Errorf("landed events = %d", len(steps.landed))
	}
	if leg.Progress() != 0 {
		t.Errorf("progress after landing = %v", leg.Progress())
	}
}

func TestLegGateBlocksOnlyNewSteps(t *testing.T) {
	w, pelvis, leg := legRig(t, testLegConfig())
	w.Update(frame)

	leg.SetAllowStep(false)
	pelvis.Transform().SetPosition(math.Vec3{X: 1})
	for i := 0; i < 10; i++ {
		w.Update(frame)
	}
	if leg.Moving() {
		t.Fatal("gated leg started a step")
	}

	leg.SetAllowStep(true)
	w.Update(frame)
	if !leg.Moving() {
		t.Fatal("leg did not step once allowed")
	}

	leg.SetAllowStep(false)
	for i := 0; i < 40 && leg.Moving(); i++ {
		w.Update(frame)
	}
	if leg.Moving() {
		t.Fatal("revoking the gate froze the leg mid-step")
	}
	if d := leg.FootActual().Distance(leg.FootIdeal()); d > 0.01 {
		t.Errorf("foot %v did not reach ideal %v", leg.FootActual(), leg.FootIdeal())
	}
}

func TestLegStepFollowsMovingTarget(t *testing.T) {
	w, pelvis, leg := legRig(t, testLegConfig())
	w.Update(frame)

	pelvis.Transform().SetPosition(math.Vec3{X: 1})
	w.Update(frame)
	w.Update(frame)
	pelvis.Transform().SetPosition(math.Vec3{X: 1.5})
	for i := 0; i < 40 && leg.Moving(); i++ {
		w.Update(frame)
	}

	x := leg.FootActual().X
	if x <= 2.1 || x >= 2.5 {
		t.Errorf("landed at x = %v, want between the stale target 2 and the new ideal 2.5", x)
	}
}

func TestLegKneeSolvedEveryFrame(t *testing.T) {
	w, pelvis, leg := legRig(t, testLegConfig())
	for i := 0; i < 30; i++ {
		pelvis.Transform().SetPosition(math.Vec3{X: float32(i) * 0.1})
		w.Update(frame)

		kneeTarget := w.Entity("knee").Transform().WorldPosition()
		want := ik.SolveKnee(leg.Pelvis(), leg.FootActual(), kneeTarget, 1, 1)
		if leg.Knee() != want {
			t.Fatalf("frame %d: knee %v, want %v", i, leg.Knee(), want)
		}
	}
}

func TestLegFootOffsetFollowsPelvisRotation(t *testing.T) {
	w, pelvis, leg := legRig(t, testLegConfig())
	pelvis.Transform().SetRotation(math.QuatFromAxisAngle(math.Vec3Up, math.Radians(90)))
	w.Update(frame)

	want := math.Vec3{Z: -1, Y: -1.5}
	if leg.FootIdeal().Distance(want) > 1e-5 {
		t.Errorf("ideal foot = %v, want %v", leg.FootIdeal(), want)
	}
}

func TestLegDefaultStepDistanceIsReach(t *testing.T) {
	cfg := testLegConfig()
	cfg.StepDistance = 0
	if got := NewLeg(cfg).Config().StepDistance; got != 2 {
		t.Errorf("StepDistance = %v, want 2", got)
	}
}

func TestLegMissingReferenceWarnsOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger.Set(zap.New(core))
	defer logger.Set(nil)

	cfg := testLegConfig()
	cfg.Pelvis = "nowhere"
	w, _, leg := legRig(t, cfg)

	for i := 0; i < 5; i++ {
		w.Update(frame)
	}
	if n := logs.FilterMessage("leg reference missing, skipping update").Len(); n != 1 {
		t.Errorf("logged %d warnings, want 1", n)
	}
	if leg.Moving() || leg.FootActual() != (math.Vec3{}) {
		t.Errorf("leg acted without a pelvis: actual %v", leg.FootActual())
	}
}

func TestLegMarkersMirrorSolver(t *testing.T) {
	cfg := testLegConfig()
	cfg.IdealMarker = "ideal"
	cfg.ActualMarker = "actual"
	cfg.KneeMarker = "knee_marker"
	w, pelvis, leg := legRig(t, cfg)
	for _, name := range []string{"ideal", "actual", "knee_marker"} {
		mustCreate(t, w, ecs.EntityDesc{Name: name})
	}

	w.Update(frame)
	pelvis.Transform().SetPosition(math.Vec3{X: 1})
	w.Update(frame)
	w.Update(frame)

	checks := map[string]math.Vec3{
		"ideal":       leg.FootIdeal(),
		"actual":      leg.FootActual(),
		"knee_marker": leg.Knee(),
	}
	for name, want := range checks {
		if got := w.Entity(name).Transform().Position; got != want {
			t.Errorf("%s marker at %v, want %v", name, got, want)
		}
	}
}
