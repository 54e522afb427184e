// Package ecs is a small entity-component layer over the scene graph.
// Entities own scene nodes; components run Start once and Update every frame
// in entity registration order.
package ecs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"go.uber.org/zap"

	"github.com/Faultbox/strider/internal/engine/scene"
	"github.com/Faultbox/strider/internal/logger"
	"github.com/Faultbox/strider/pkg/math"
)

// CameraEntity is the reserved name of the entity bound to the default camera.
const CameraEntity = "camera"

var (
	// ErrDuplicateEntity is returned when an entity name is already taken.
	ErrDuplicateEntity = errors.New("ecs: duplicate entity name")
	// ErrUnknownParent is returned when the parent entity belongs to no world
	// or to another world.
	ErrUnknownParent = errors.New("ecs: parent entity not in this world")
)

// CameraEntityName returns the reserved entity name for a viewport camera.
func CameraEntityName(id string) string {
	if id == scene.DefaultCamera {
		return CameraEntity
	}
	return CameraEntity + ":" + id
}

// World owns the entity registry and drives component lifecycles.
type World struct {
	// MaxDelta caps the dt passed to components. Zero disables the cap.
	MaxDelta float64

	graph    *scene.Graph
	entities []*Entity
	byName   map[string]*Entity
	bus      donburi.World
	started  bool
	log      *zap.Logger
}

// NewWorld creates a world over g and registers the reserved camera entities
// for every camera already in the graph.
func NewWorld(g *scene.Graph) *World {
	w := &World{
		graph:  g,
		byName: make(map[string]*Entity),
		bus:    donburi.NewWorld(),
		log:    logger.Named("ecs"),
	}
	for _, id := range g.Cameras() {
		w.register(&Entity{Name: CameraEntityName(id), Node: g.Camera(id).Node, world: w})
	}
	return w
}

// Graph returns the scene graph the world builds into.
func (w *World) Graph() *scene.Graph { return w.graph }

// Bus returns the event world components publish to. Queued events are
// delivered at the end of every Update.
func (w *World) Bus() donburi.World { return w.bus }

// Started reports whether Start has run.
func (w *World) Started() bool { return w.started }

// Len returns the number of entities, reserved ones included.
func (w *World) Len() int { return len(w.entities) }

// Entities returns the entities in registration order.
func (w *World) Entities() []*Entity { return w.entities }

// Entity returns the named entity, or nil.
func (w *World) Entity(name string) *Entity { return w.byName[name] }

// CreateEntity builds a node from desc, attaches it under the parent entity's
// node (or the root), binds the components and registers the entity.
func (w *World) CreateEntity(desc EntityDesc) (*Entity, error) {
	name := desc.Name
	if name == "" {
		name = uuid.NewString()
	}
	if _, ok := w.byName[name]; ok {
		return nil, fmt.Errorf("create %q: %w", name, ErrDuplicateEntity)
	}
	parent := scene.NoNode
	if desc.Parent != nil {
		if desc.Parent.world != w || w.byName[desc.Parent.Name] != desc.Parent {
			return nil, fmt.Errorf("create %q under %q: %w", name, desc.Parent.Name, ErrUnknownParent)
		}
		parent = desc.Parent.Node
	}

	t := scene.NewTransform()
	t.Position = desc.Position
	if desc.Rotation != (math.Quat{}) {
		t.Rotation = desc.Rotation
	}
	if desc.Scale != (math.Vec3{}) {
		t.Scale = desc.Scale
	}
	node := w.graph.CreateNode(name, t, scene.RenderBinding{Mesh: desc.Mesh, Material: desc.Material})
	if err := w.graph.AddObject(node, parent); err != nil {
		return nil, fmt.Errorf("create %q: %w", name, err)
	}

	e := &Entity{Name: name, Node: node, world: w}
	w.register(e)
	for _, c := range desc.Components {
		w.attach(e, c)
	}
	return e, nil
}

// AddComponent binds c to an existing entity. On a started world the
// component starts immediately.
func (w *World) AddComponent(e *Entity, c Component) error {
	if e == nil || w.byName[e.Name] != e {
		return ErrUnknownParent
	}
	if !w.attach(e, c) {
		return ErrAlreadyAttached
	}
	return nil
}

// CreateCamera registers a viewport camera in the graph and its reserved
// entity, named by CameraEntityName.
func (w *World) CreateCamera(id string, cfg scene.CameraConfig) (*Entity, error) {
	name := CameraEntityName(id)
	if _, ok := w.byName[name]; ok {
		return nil, fmt.Errorf("camera %q: %w", id, ErrDuplicateEntity)
	}
	node, err := w.graph.AddCamera(id, cfg)
	if err != nil {
		return nil, err
	}
	e := &Entity{Name: name, Node: node, world: w}
	w.register(e)
	return e, nil
}

func (w *World) register(e *Entity) {
	w.entities = append(w.entities, e)
	w.byName[e.Name] = e
}

func (w *World) attach(e *Entity, c Component) bool {
	if err := c.AttachNode(e, w); err != nil {
		w.log.Warn("component not attached",
			zap.String("entity", e.Name),
			zap.String("kind", string(c.Kind())),
			zap.Error(err),
		)
		return false
	}
	e.add(c)
	if w.started {
		c.Start()
	}
	return true
}

// Start runs Start on every component in registration order. Only the first
// call has any effect.
func (w *World) Start() {
	if w.started {
		return
	}
	w.started = true
	for _, e := range w.entities {
		for _, c := range e.components {
			c.Start()
		}
	}
	w.log.Debug("world started", zap.Int("entities", len(w.entities)))
}

// Update runs one frame: every component's Update in registration order, then
// delivery of queued events. dt is clamped to [0, MaxDelta]. Entities created
// during the frame first update on the next one.
func (w *World) Update(dt float64) {
	if !w.started {
		w.Start()
	}
	dt = w.ClampDelta(dt)

	n := len(w.entities)
	for i := 0; i < n; i++ {
		for _, c := range w.entities[i].components {
			c.Update(dt)
		}
	}
	events.ProcessAllEvents(w.bus)
}

// ClampDelta returns dt limited to [0, MaxDelta].
func (w *World) ClampDelta(dt float64) float64 {
	if dt < 0 {
		return 0
	}
	if w.MaxDelta > 0 && dt > w.MaxDelta {
		return w.MaxDelta
	}
	return dt
}
