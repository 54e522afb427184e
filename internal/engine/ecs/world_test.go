package ecs

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/strider/internal/engine/scene"
	"github.com/Faultbox/strider/internal/logger"
	"github.com/Faultbox/strider/pkg/math"
)

const recorderKind Kind = "recorder"

type recorder struct {
	Base
	name   string
	log    *[]string
	dts    []float64
	starts int
	onTick func()
}

func (r *recorder) Kind() Kind { return recorderKind }

func (r *recorder) Start() {
	r.starts++
	*r.log = append(*r.log, "start:"+r.name)
}

func (r *recorder) Update(dt float64) {
	r.dts = append(r.dts, dt)
	*r.log = append(*r.log, "update:"+r.name)
	if r.onTick != nil {
		r.onTick()
	}
}

func newWorld() *World {
	return NewWorld(scene.NewGraph())
}

func TestUpdateRunsInRegistrationOrder(t *testing.T) {
	w := newWorld()
	var log []string
	for _, name := range []string{"c", "a", "b"} {
		if _, err := w.CreateEntity(EntityDesc{
			Name:       name,
			Components: []Component{&recorder{name: name, log: &log}},
		}); err != nil {
			t.Fatal(err)
		}
	}

	w.Start()
	w.Start()
	w.Update(0.016)
	w.Update(0.016)

	want := []string{
		"start:c", "start:a", "start:b",
		"update:c", "update:a", "update:b",
		"update:c", "update:a", "update:b",
	}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %s, want %s", i, log[i], want[i])
		}
	}
}

func TestUpdateStartsLazily(t *testing.T) {
	w := newWorld()
	var log []string
	r := &recorder{name: "r", log: &log}
	if _, err := w.CreateEntity(EntityDesc{Components: []Component{r}}); err != nil {
		t.Fatal(err)
	}

	w.Update(0.01)
	if r.starts != 1 || !w.Started() {
		t.Errorf("starts = %d, started = %v", r.starts, w.Started())
	}
}

func TestCreateEntityDefaults(t *testing.T) {
	w := newWorld()
	e, err := w.CreateEntity(EntityDesc{
		Position: math.Vec3{1, 2, 3},
		Mesh:     "cube",
		Material: "metal",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := uuid.Parse(e.Name); err != nil {
		t.Errorf("generated name %q is not a UUID: %v", e.Name, err)
	}
	if w.Entity(e.Name) != e {
		t.Error("entity not registered under its generated name")
	}

	tr := e.Transform()
	if tr.Rotation != math.QuatIdentity() {
		t.Errorf("rotation = %v, want identity", tr.Rotation)
	}
	if tr.Scale != math.Vec3One {
		t.Errorf("scale = %v, want one", tr.Scale)
	}
	if tr.Position != (math.Vec3{1, 2, 3}) {
		t.Errorf("position = %v", tr.Position)
	}

	n := e.SceneNode()
	if n.Parent() != w.Graph().Root() {
		t.Errorf("node parent = %d, want root", n.Parent())
	}
	if n.Binding != (scene.RenderBinding{Mesh: "cube", Material: "metal"}) {
		t.Errorf("binding = %+v", n.Binding)
	}
}

func TestCreateEntityUnderParent(t *testing.T) {
	w := newWorld()
	body, err := w.CreateEntity(EntityDesc{Name: "body", Position: math.Vec3{0, 2, 0}})
	if err != nil {
		t.Fatal(err)
	}
	hip, err := w.CreateEntity(EntityDesc{Name: "hip", Parent: body, Position: math.Vec3{1, 0, 0}})
	if err != nil {
		t.Fatal(err)
	}

	if hip.SceneNode().Parent() != body.Node {
		t.Errorf("hip parent = %d, want %d", hip.SceneNode().Parent(), body.Node)
	}
	if got := hip.Transform().WorldPosition(); got != (math.Vec3{1, 2, 0}) {
		t.Errorf("hip world position = %v, want (1, 2, 0)", got)
	}
}

func TestCreateEntityErrors(t *testing.T) {
	w := newWorld()
	if _, err := w.CreateEntity(EntityDesc{Name: "body"}); err != nil {
		t.Fatal(err)
	}
	nodes := w.Graph().Len()

	if _, err := w.CreateEntity(EntityDesc{Name: "body"}); !errors.Is(err, ErrDuplicateEntity) {
		t.Errorf("duplicate name: got %v", err)
	}
	if _, err := w.CreateEntity(EntityDesc{Name: CameraEntity}); !errors.Is(err, ErrDuplicateEntity) {
		t.Errorf("reserved camera name: got %v", err)
	}

	other := newWorld()
	stranger, _ := other.CreateEntity(EntityDesc{Name: "stranger"})
	if _, err := w.CreateEntity(EntityDesc{Name: "x", Parent: stranger}); !errors.Is(err, ErrUnknownParent) {
		t.Errorf("foreign parent: got %v", err)
	}

	if w.Graph().Len() != nodes {
		t.Errorf("failed creations allocated %d nodes", w.Graph().Len()-nodes)
	}
}

func TestDoubleAttachKeepsFirstBinding(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger.Set(zap.New(core))
	defer logger.Set(nil)

	w := newWorld()
	var log []string
	r := &recorder{name: "shared", log: &log}

	first, err := w.CreateEntity(EntityDesc{Name: "first", Components: []Component{r}})
	if err != nil {
		t.Fatal(err)
	}
	second, err := w.CreateEntity(EntityDesc{Name: "second", Components: []Component{r}})
	if err != nil {
		t.Fatal(err)
	}

	if r.Entity() != first {
		t.Errorf("component bound to %q, want first", r.Entity().Name)
	}
	if len(second.Components()) != 0 {
		t.Errorf("second entity holds %d components", len(second.Components()))
	}
	if err := w.AddComponent(second, r); !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("AddComponent: got %v", err)
	}
	if n := logs.FilterMessage("component not attached").Len(); n != 2 {
		t.Errorf("logged %d warnings, want 2", n)
	}

	w.Update(0.01)
	if len(r.dts) != 1 {
		t.Errorf("shared component updated %d times per frame", len(r.dts))
	}
}

func TestCameraEntities(t *testing.T) {
	w := newWorld()
	cam := w.Entity(CameraEntity)
	if cam == nil {
		t.Fatal("reserved camera entity missing")
	}
	if cam.Node != w.Graph().Camera(scene.DefaultCamera).Node {
		t.Error("camera entity not bound to the default camera node")
	}

	mini, err := w.CreateCamera("minimap", scene.CameraConfig{Projection: scene.Orthographic, Extent: 10, Near: 0.1, Far: 50})
	if err != nil {
		t.Fatal(err)
	}
	if mini.Name != "camera:minimap" || w.Entity("camera:minimap") != mini {
		t.Errorf("camera entity name = %q", mini.Name)
	}
	mini.Transform().SetPosition(math.Vec3{0, 30, 0})
	view, err := w.Graph().ViewMatrix("minimap")
	if err != nil {
		t.Fatal(err)
	}
	if got := view.TransformVec3(math.Vec3{}); got != (math.Vec3{0, -30, 0}) {
		t.Errorf("entity transform does not drive the camera: origin maps to %v", got)
	}

	if _, err := w.CreateCamera("minimap", scene.CameraConfig{}); !errors.Is(err, ErrDuplicateEntity) {
		t.Errorf("duplicate camera: got %v", err)
	}
}

func TestUpdateClampsDelta(t *testing.T) {
	w := newWorld()
	w.MaxDelta = 1.0 / 15
	var log []string
	r := &recorder{name: "r", log: &log}
	if _, err := w.CreateEntity(EntityDesc{Components: []Component{r}}); err != nil {
		t.Fatal(err)
	}

	w.Update(2)
	w.Update(-0.5)
	w.Update(0.01)

	want := []float64{1.0 / 15, 0, 0.01}
	for i := range want {
		if r.dts[i] != want[i] {
			t.Errorf("dt[%d] = %v, want %v", i, r.dts[i], want[i])
		}
	}
}

func TestLateEntitiesStartImmediatelyAndUpdateNextFrame(t *testing.T) {
	w := newWorld()
	var log []string
	spawner := &recorder{name: "spawner", log: &log}
	late := &recorder{name: "late", log: &log}
	spawner.onTick = func() {
		if w.Entity("late") == nil {
			if _, err := w.CreateEntity(EntityDesc{Name: "late", Components: []Component{late}}); err != nil {
				t.Fatal(err)
			}
		}
	}
	if _, err := w.CreateEntity(EntityDesc{Name: "spawner", Components: []Component{spawner}}); err != nil {
		t.Fatal(err)
	}

	w.Update(0.01)
	if late.starts != 1 {
		t.Errorf("late component started %d times", late.starts)
	}
	if len(late.dts) != 0 {
		t.Error("entity created mid-frame was updated in the same frame")
	}

	w.Update(0.01)
	if len(late.dts) != 1 {
		t.Errorf("late component updated %d times after two frames", len(late.dts))
	}
}

type ping struct{ From string }

var pingEvent = events.NewEventType[ping]()

func TestEventsDeliveredAfterComponents(t *testing.T) {
	w := newWorld()
	var log []string
	var received []string
	pingEvent.Subscribe(w.Bus(), func(_ donburi.World, p ping) {
		received = append(received, p.From)
		log = append(log, "event:"+p.From)
	})

	a := &recorder{name: "a", log: &log}
	a.onTick = func() { pingEvent.Publish(w.Bus(), ping{From: "a"}) }
	b := &recorder{name: "b", log: &log}
	for _, r := range []*recorder{a, b} {
		if _, err := w.CreateEntity(EntityDesc{Name: r.name, Components: []Component{r}}); err != nil {
			t.Fatal(err)
		}
	}

	w.Update(0.01)

	if len(received) != 1 || received[0] != "a" {
		t.Fatalf("received %v", received)
	}
	if last := log[len(log)-1]; last != "event:a" {
		t.Errorf("event delivered before the frame finished: %v", log)
	}
}

func TestComponentOf(t *testing.T) {
	w := newWorld()
	var log []string
	r := &recorder{name: "r", log: &log}
	e, _ := w.CreateEntity(EntityDesc{Components: []Component{r}})

	got, ok := ComponentOf[*recorder](e, recorderKind)
	if !ok || got != r {
		t.Errorf("ComponentOf = %v, %v", got, ok)
	}
	if _, ok := ComponentOf[*recorder](e, "missing"); ok {
		t.Error("found a component of an unknown kind")
	}
	if _, ok := ComponentOf[*recorder](nil, recorderKind); ok {
		t.Error("nil entity returned a component")
	}
	if e.Component(recorderKind) != Component(r) {
		t.Error("Component accessor mismatch")
	}
	if w.Entity("nobody") != nil {
		t.Error("unknown entity lookup should return nil")
	}
}
