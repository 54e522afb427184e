package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/strider/pkg/math"
)

// DefaultCamera is the viewport id of the camera every graph starts with.
const DefaultCamera = "main"

var (
	// ErrCameraNotFound is returned for unknown viewport ids.
	ErrCameraNotFound = errors.New("scene: camera not found")
	// ErrCameraExists is returned when registering a viewport id twice.
	ErrCameraExists = errors.New("scene: camera already registered")
)

// Projection selects how a camera maps view space to clip space.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

func (p Projection) String() string {
	switch p {
	case Perspective:
		return "perspective"
	case Orthographic:
		return "orthographic"
	default:
		return fmt.Sprintf("Projection(%d)", int(p))
	}
}

// CameraConfig holds projection parameters.
type CameraConfig struct {
	Projection Projection
	FOV        float32 // vertical field of view in degrees (perspective)
	Extent     float32 // half of the visible height (orthographic)
	Aspect     float32
	Near, Far  float32

	// A linked camera takes its aspect from LinkTo's aspect times LinkFactor
	// whenever LinkTo is resized.
	LinkTo     string
	LinkFactor float32
}

// DefaultCameraConfig returns a 45 degree perspective camera.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Projection: Perspective,
		FOV:        45,
		Aspect:     16.0 / 9.0,
		Near:       0.1,
		Far:        1000,
	}
}

// Camera is a registered viewport camera. Its position and rotation live on
// its node so it can be driven like any other transform.
type Camera struct {
	ID   string
	Node NodeID
	CameraConfig
}

// AddCamera registers a camera under id and creates its node beneath the root.
func (g *Graph) AddCamera(id string, cfg CameraConfig) (NodeID, error) {
	if _, ok := g.cameras[id]; ok {
		return NoNode, fmt.Errorf("camera %q: %w", id, ErrCameraExists)
	}
	if cfg.LinkTo != "" {
		target, ok := g.cameras[cfg.LinkTo]
		if !ok {
			return NoNode, fmt.Errorf("camera %q linked to %q: %w", id, cfg.LinkTo, ErrCameraNotFound)
		}
		if cfg.LinkFactor == 0 {
			cfg.LinkFactor = 1
		}
		cfg.Aspect = target.Aspect * cfg.LinkFactor
	}

	node := g.CreateNode("camera:"+id, NewTransform(), RenderBinding{})
	if err := g.AddObject(node, g.root); err != nil {
		return NoNode, err
	}
	g.cameras[id] = &Camera{ID: id, Node: node, CameraConfig: cfg}
	g.cameraOrder = append(g.cameraOrder, id)
	return node, nil
}

// Camera returns the camera registered under id, or nil.
func (g *Graph) Camera(id string) *Camera {
	return g.cameras[id]
}

// Cameras returns the registered viewport ids in registration order.
func (g *Graph) Cameras() []string {
	return append([]string(nil), g.cameraOrder...)
}

func (g *Graph) camera(id string) (*Camera, error) {
	c, ok := g.cameras[id]
	if !ok {
		return nil, fmt.Errorf("camera %q: %w", id, ErrCameraNotFound)
	}
	return c, nil
}

// SetCameraPosition moves the camera node.
func (g *Graph) SetCameraPosition(id string, p math.Vec3) error {
	c, err := g.camera(id)
	if err != nil {
		return err
	}
	g.nodes[c.Node].Transform.SetPosition(p)
	return nil
}

// SetCameraRotation orients the camera node.
func (g *Graph) SetCameraRotation(id string, q math.Quat) error {
	c, err := g.camera(id)
	if err != nil {
		return err
	}
	g.nodes[c.Node].Transform.SetRotation(q)
	return nil
}

// ViewMatrix returns Rotate(conjugate(rotation)) * Translate(-position) for
// the camera's world transform.
func (g *Graph) ViewMatrix(id string) (math.Mat4, error) {
	c, err := g.camera(id)
	if err != nil {
		return math.Identity(), err
	}
	t := &g.nodes[c.Node].Transform
	rot := t.WorldRotation().Conjugate().ToMat4()
	return rot.Mul(math.TranslateVec3(t.WorldPosition().Negate())), nil
}

// ProjectionMatrix returns the camera's perspective or orthographic matrix.
func (g *Graph) ProjectionMatrix(id string) (math.Mat4, error) {
	c, err := g.camera(id)
	if err != nil {
		return math.Identity(), err
	}
	return c.projection(), nil
}

func (c *Camera) projection() math.Mat4 {
	if c.Projection == Orthographic {
		h := c.Extent
		w := h * c.Aspect
		return math.Ortho(-w, w, -h, h, c.Near, c.Far)
	}
	return math.Perspective(math.Radians(c.FOV), c.Aspect, c.Near, c.Far)
}

// Resize sets the camera's aspect from a viewport size and propagates it to
// every camera linked to it, directly or through other linked cameras.
// A zero height leaves the aspect unchanged.
func (g *Graph) Resize(id string, width, height int) error {
	c, err := g.camera(id)
	if err != nil {
		return err
	}
	if height <= 0 {
		return nil
	}
	c.Aspect = float32(width) / float32(height)
	g.propagateAspect(c.ID, map[string]bool{c.ID: true})
	return nil
}

func (g *Graph) propagateAspect(from string, seen map[string]bool) {
	target := g.cameras[from]
	for _, id := range g.cameraOrder {
		linked := g.cameras[id]
		if linked.LinkTo != from || seen[id] {
			continue
		}
		seen[id] = true
		linked.Aspect = target.Aspect * linked.LinkFactor
		g.propagateAspect(id, seen)
	}
}
