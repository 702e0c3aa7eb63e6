// Package renderer draws a scene with OpenGL. Geometry buffers are uploaded
// on first use and afterwards only the dirty ranges of their attributes are
// re-sent.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/display"
	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/engine/material"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/engine/shader"
	"github.com/Faultbox/ifcview/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Stats describes the last frame.
type Stats struct {
	DrawCalls     int
	Uploads       int
	UploadedBytes int
	Geometries    int
	Programs      int
}

// program is a linked mesh program and its uniform locations.
type program struct {
	id       uint32
	mvp      int32
	model    int32
	color    int32
	lightDir int32
}

// gpuGeometry holds the GL objects of one geometry.
type gpuGeometry struct {
	vao   uint32
	ebo   uint32
	index []uint32 // index slice last uploaded
	attrs map[string]*uploaded
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config   Config
	base     shader.Source
	programs map[string]*program // by hook key; nil entry marks a failed compile
	geoms    map[*geometry.Geometry]*gpuGeometry
	stats    Stats
	log      *zap.Logger
}

// New creates a new renderer.
// Must be called after the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		base:     shader.Mesh(),
		programs: make(map[string]*program),
		geoms:    make(map[*geometry.Geometry]*gpuGeometry),
		log:      logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.MULTISAMPLE)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	// Disabled channel arrays read these: opaque and unhighlighted.
	for _, name := range display.Channels {
		loc, _ := shader.AttributeLocation(name)
		v := float32(0)
		if name == display.ChannelA {
			v = 1
		}
		gl.VertexAttrib1f(loc, v)
	}

	// Programs every frame needs are compiled up front.
	for _, hook := range []*shader.Hook{nil, shader.DisplayHook, shader.TransparencyHook} {
		if _, err := r.compile(hook); err != nil {
			r.Close()
			return nil, err
		}
	}
	return r, nil
}

// Close releases all GL objects.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for g := range r.geoms {
		r.release(g)
	}
	for key, p := range r.programs {
		if p != nil {
			gl.DeleteProgram(p.id)
		}
		delete(r.programs, key)
	}
}

// Resize handles window resize. width and height are in pixels.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Stats returns the statistics of the last Draw.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Draw clears the frame and renders every visible mesh of sc: opaque draw
// calls first, then transparent ones blended without depth writes. GPU
// buffers of geometries that were not drawn are released afterwards.
func (r *Renderer) Draw(sc *scene.Scene, viewProj mgl32.Mat4) {
	r.stats = Stats{}
	bg := sc.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	identity := mgl32.Ident4()
	drawn := make(map[*geometry.Geometry]bool)

	for _, dc := range queue(sc) {
		g := dc.mesh.Geometry
		gg := r.geoms[g]
		if !drawn[g] {
			gg = r.sync(g)
			drawn[g] = true
		}

		p := r.program(dc.hook)
		if p == nil {
			continue
		}
		r.applyMaterial(dc.material)

		gl.UseProgram(p.id)
		gl.UniformMatrix4fv(p.mvp, 1, false, &viewProj[0])
		gl.UniformMatrix4fv(p.model, 1, false, &identity[0])
		color := dc.material.RGBA()
		gl.Uniform4fv(p.color, 1, &color[0])
		gl.Uniform3fv(p.lightDir, 1, &sc.LightDir[0])

		gl.BindVertexArray(gg.vao)
		if g.Indexed() {
			gl.DrawElementsWithOffset(gl.TRIANGLES, int32(dc.count), gl.UNSIGNED_INT, uintptr(dc.start*4))
		} else {
			gl.DrawArrays(gl.TRIANGLES, int32(dc.start), int32(dc.count))
		}
		r.stats.DrawCalls++
	}
	gl.BindVertexArray(0)

	gl.DepthMask(true)
	gl.Disable(gl.BLEND)

	for g := range r.geoms {
		if !drawn[g] {
			r.release(g)
		}
	}
	r.stats.Geometries = len(r.geoms)
	r.stats.Programs = len(r.programs)
}

// applyMaterial sets blend, depth and cull state for mat.
func (r *Renderer) applyMaterial(mat *material.Material) {
	if mat.Transparent {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
	} else {
		gl.Disable(gl.BLEND)
		gl.DepthMask(mat.DepthWrite)
	}
	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
}

// program returns the cached program for hook, compiling it on first use.
// A failed compile is logged once and the hook's draw calls are skipped.
func (r *Renderer) program(hook *shader.Hook) *program {
	if p, ok := r.programs[hook.Key()]; ok {
		return p
	}
	p, err := r.compile(hook)
	if err != nil {
		r.log.Error("shader compile failed", zap.String("hook", hook.Key()), zap.Error(err))
		r.programs[hook.Key()] = nil
		return nil
	}
	return p
}

func (r *Renderer) compile(hook *shader.Hook) (*program, error) {
	id, err := shader.Compile(r.base, hook)
	if err != nil {
		return nil, err
	}
	p := &program{
		id:       id,
		mvp:      shader.Uniform(id, "uMVP"),
		model:    shader.Uniform(id, "uModel"),
		color:    shader.Uniform(id, "uColor"),
		lightDir: shader.Uniform(id, "uLightDir"),
	}
	r.programs[hook.Key()] = p
	r.log.Debug("program compiled", zap.String("hook", hook.Key()), zap.Uint32("program", id))
	return p, nil
}

// sync brings the GPU copy of g up to date and clears the dirty ranges it
// uploaded.
func (r *Renderer) sync(g *geometry.Geometry) *gpuGeometry {
	gg, ok := r.geoms[g]
	if !ok {
		gg = &gpuGeometry{attrs: make(map[string]*uploaded)}
		gl.GenVertexArrays(1, &gg.vao)
		r.geoms[g] = gg
	}
	gl.BindVertexArray(gg.vao)

	if g.Indexed() && !sameSlice(gg.index, g.Index) {
		if gg.ebo == 0 {
			gl.GenBuffers(1, &gg.ebo)
		}
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gg.ebo)
		if len(g.Index) > 0 {
			gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Index)*4, gl.Ptr(g.Index), gl.STATIC_DRAW)
		}
		gg.index = g.Index
		r.stats.Uploads++
		r.stats.UploadedBytes += len(g.Index) * 4
	}

	ups, stale := planUploads(g, gg.attrs)
	for _, name := range stale {
		held := gg.attrs[name]
		gl.DeleteBuffers(1, &held.vbo)
		delete(gg.attrs, name)
		if loc, ok := shader.AttributeLocation(name); ok {
			gl.DisableVertexAttribArray(loc)
		}
	}
	for _, up := range ups {
		r.apply(gg, up)
	}

	gl.BindVertexArray(0)
	return gg
}

// apply performs one planned transfer. The VAO must be bound.
func (r *Renderer) apply(gg *gpuGeometry, up upload) {
	loc, _ := shader.AttributeLocation(up.name)
	data := up.attr.Data

	held, ok := gg.attrs[up.name]
	if !ok {
		held = &uploaded{}
		gl.GenBuffers(1, &held.vbo)
		gg.attrs[up.name] = held
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, held.vbo)

	offset, size := up.byteRange()
	switch {
	case len(data) == 0:
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	case up.full:
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_DRAW)
	default:
		gl.BufferSubData(gl.ARRAY_BUFFER, offset, size, gl.Ptr(&data[up.lo*up.attr.ItemSize]))
	}
	if up.full {
		size = len(data) * 4
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointerWithOffset(loc, int32(up.attr.ItemSize), gl.FLOAT, false, 0, 0)
	}

	held.attr = up.attr
	held.count = len(data)
	up.attr.ClearDirty()

	r.stats.Uploads++
	r.stats.UploadedBytes += size
}

// ReadPixels reads the current framebuffer as RGBA rows, bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// release deletes the GL objects of g.
func (r *Renderer) release(g *geometry.Geometry) {
	gg, ok := r.geoms[g]
	if !ok {
		return
	}
	for _, held := range gg.attrs {
		gl.DeleteBuffers(1, &held.vbo)
	}
	if gg.ebo != 0 {
		gl.DeleteBuffers(1, &gg.ebo)
	}
	gl.DeleteVertexArrays(1, &gg.vao)
	delete(r.geoms, g)
}

// sameSlice reports whether a and b are the same backing array and length.
func sameSlice(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return a != nil && b != nil
	}
	return &a[0] == &b[0]
}
