// Package renderer draws the scene graph with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/strider/internal/engine/lighting"
	"github.com/Faultbox/strider/internal/engine/mesh"
	"github.com/Faultbox/strider/internal/engine/scene"
	"github.com/Faultbox/strider/internal/engine/shader"
	"github.com/Faultbox/strider/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [4]float32
	Sun        lighting.Sun
	Materials  map[string]Material
	Meshes     *mesh.Library
}

// Viewport is a screen rectangle in fractions of the window size.
type Viewport struct {
	X, Y, W, H float32
}

// FullScreen covers the whole window.
var FullScreen = Viewport{W: 1, H: 1}

// Stats counts the work done since the last Begin.
type Stats struct {
	DrawCalls int
	Triangles int
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	queue  *Queue
	lights *lighting.Buffer

	program  *shader.Program
	uniforms struct {
		model, view, projection   int32
		color, unlit              int32
		sunDir, sunColor, ambient int32

		lightCount, lightType, lightPos int32
		lightColor, lightRange          int32
	}

	meshes map[string]*gpuMesh
	warned map[string]bool
	stats  Stats
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if cfg.Meshes == nil {
		cfg.Meshes = mesh.NewLibrary()
	}
	r := &Renderer{
		config: cfg,
		queue:  NewQueue(cfg.Materials),
		lights: lighting.NewBuffer(),
		meshes: make(map[string]*gpuMesh),
		warned: make(map[string]bool),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])

	var err error
	r.program, err = shader.New(sceneVertexShader, sceneFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	u := &r.uniforms
	for _, req := range []struct {
		loc  *int32
		name string
	}{
		{&u.model, "uModel"},
		{&u.view, "uView"},
		{&u.projection, "uProjection"},
		{&u.color, "uColor"},
	} {
		if *req.loc, err = r.program.MustUniform(req.name); err != nil {
			r.program.Delete()
			return nil, err
		}
	}
	u.unlit = r.program.Uniform("uUnlit")
	u.sunDir = r.program.Uniform("uSunDir")
	u.sunColor = r.program.Uniform("uSunColor")
	u.ambient = r.program.Uniform("uAmbient")
	// Array uniforms resolve to element 0 and are uploaded whole.
	u.lightCount = r.program.Uniform("uLightCount")
	u.lightType = r.program.Uniform("uLightType")
	u.lightPos = r.program.Uniform("uLightPos")
	u.lightColor = r.program.Uniform("uLightColor")
	u.lightRange = r.program.Uniform("uLightRange")

	for _, name := range cfg.Meshes.Names() {
		m, err := cfg.Meshes.Get(name)
		if err != nil {
			return nil, err
		}
		r.meshes[name] = upload(m)
	}

	logger.Debug("renderer ready",
		zap.Uint32("program", r.program.ID),
		zap.Int("meshes", len(r.meshes)),
	)
	return r, nil
}

// upload copies m into a VAO with position at location 0 and normal at 1.
func upload(m *mesh.Mesh) *gpuMesh {
	g := &gpuMesh{count: int32(len(m.Indices))}
	vertices := m.Interleave()
	stride := int32(mesh.FloatsPerVertex * 4)

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	logger.Debug("mesh uploaded",
		zap.String("mesh", m.Name),
		zap.Uint32("vao", g.vao),
		zap.Int("triangles", m.Triangles()),
	)
	return g
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for _, m := range r.meshes {
		gl.DeleteVertexArrays(1, &m.vao)
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	r.stats = Stats{}
	gl.Viewport(0, 0, int32(r.config.Width), int32(r.config.Height))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// Draw renders g as seen by camera into vp.
func (r *Renderer) Draw(g *scene.Graph, camera string, vp Viewport) error {
	view, err := g.ViewMatrix(camera)
	if err != nil {
		return err
	}
	proj, err := g.ProjectionMatrix(camera)
	if err != nil {
		return err
	}

	x := int32(vp.X * float32(r.config.Width))
	y := int32(vp.Y * float32(r.config.Height))
	w := int32(vp.W * float32(r.config.Width))
	h := int32(vp.H * float32(r.config.Height))
	gl.Viewport(x, y, w, h)
	if vp != FullScreen {
		gl.Enable(gl.SCISSOR_TEST)
		gl.Scissor(x, y, w, h)
		gl.Clear(gl.DEPTH_BUFFER_BIT)
		gl.Disable(gl.SCISSOR_TEST)
	}

	r.program.Use()
	gl.UniformMatrix4fv(r.uniforms.view, 1, false, view.Ptr())
	gl.UniformMatrix4fv(r.uniforms.projection, 1, false, proj.Ptr())
	sun := r.config.Sun
	gl.Uniform3f(r.uniforms.sunDir, sun.Direction.X, sun.Direction.Y, sun.Direction.Z)
	gl.Uniform3f(r.uniforms.sunColor, sun.Color.X, sun.Color.Y, sun.Color.Z)
	gl.Uniform3f(r.uniforms.ambient, sun.Ambient.X, sun.Ambient.Y, sun.Ambient.Z)
	r.uploadLights()

	for _, call := range r.queue.Build(g) {
		m, ok := r.meshes[call.Mesh]
		if !ok {
			if !r.warned[call.Mesh] {
				r.warned[call.Mesh] = true
				logger.Warn("unknown mesh", zap.String("mesh", call.Mesh))
			}
			continue
		}
		c := call.Material.Color
		gl.UniformMatrix4fv(r.uniforms.model, 1, false, call.Model.Ptr())
		gl.Uniform4f(r.uniforms.color, c[0], c[1], c[2], c[3])
		unlit := int32(0)
		if call.Material.Unlit {
			unlit = 1
		}
		gl.Uniform1i(r.uniforms.unlit, unlit)

		gl.BindVertexArray(m.vao)
		gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
		r.stats.DrawCalls++
		r.stats.Triangles += int(m.count) / 3
	}
	return nil
}

// Lights returns the buffer uploaded with every Draw. Callers refill it each
// frame.
func (r *Renderer) Lights() *lighting.Buffer { return r.lights }

func (r *Renderer) uploadLights() {
	u := &r.uniforms
	b := r.lights
	gl.Uniform1i(u.lightCount, int32(b.Len()))
	if b.Len() == 0 {
		return
	}
	types := b.Types()
	positions := b.Positions()
	colors := b.Colors()
	ranges := b.Ranges()
	gl.Uniform1iv(u.lightType, lighting.MaxLights, &types[0])
	gl.Uniform3fv(u.lightPos, lighting.MaxLights, &positions[0])
	gl.Uniform3fv(u.lightColor, lighting.MaxLights, &colors[0])
	gl.Uniform1fv(u.lightRange, lighting.MaxLights, &ranges[0])
}

// Stats returns the counters for the current frame.
func (r *Renderer) Stats() Stats { return r.stats }

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
