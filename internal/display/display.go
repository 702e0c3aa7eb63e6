// Package display paints per-element display state (color, opacity,
// highlight) onto the vertex channels of a model's merged mesh.
package display

import (
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/engine/material"
	"github.com/Faultbox/ifcview/internal/engine/model"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/engine/shader"
	"github.com/Faultbox/ifcview/internal/logger"
)

// Vertex channel names. The five channels exist together or not at all.
const (
	ChannelR = "r"
	ChannelG = "g"
	ChannelB = "b"
	ChannelA = "a"
	ChannelH = "h"
)

// Channels lists the display channels in write order.
var Channels = [5]string{ChannelR, ChannelG, ChannelB, ChannelA, ChannelH}

// State is the display state written to every vertex of an element.
type State struct {
	R, G, B float32
	A       float32 // 1 is opaque
	H       float32 // Highlight weight
}

// Opaque is the state channels are allocated with: uncolored, fully opaque.
var Opaque = State{A: 1}

func (s State) values() [5]float32 {
	return [5]float32{s.R, s.G, s.B, s.A, s.H}
}

// Result reports what a Paint call changed.
type Result struct {
	Faces       int  // Triangles written
	Vertices    int  // Vertex writes per channel
	TwinCreated bool // A transparent twin was added to the scene
}

// Painter writes display state for the models of a repository.
type Painter struct {
	models model.Repository
}

// NewPainter creates a painter over models.
func NewPainter(models model.Repository) *Painter {
	return &Painter{models: models}
}

// Paint writes state to every triangle owned by ids in the model's merged
// mesh. Shared vertices take the value of the last triangle written. When
// state is not opaque the mesh's transparent twin is created in sc if it does
// not exist yet. Unknown models and element ids are skipped.
func (p *Painter) Paint(modelID int, ids []int, state State, sc scene.Container) Result {
	log := logger.Named("display")

	m, ok := p.models.Model(modelID)
	if !ok {
		log.Debug("paint skipped: unknown model", zap.Int("model", modelID))
		return Result{}
	}

	g := m.Mesh.Geometry
	EnsureAttributes(g)

	var res Result
	channels := channelsOf(g)
	values := state.values()
	lo, hi := -1, -1

	if g.Indexed() {
		vertexCount := g.VertexCount()
		for _, id := range ids {
			faces, ok := m.Faces[id]
			if !ok {
				log.Debug("paint skipped element", zap.Int("model", modelID), zap.Int("element", id))
				continue
			}
			for _, f := range faces {
				va, vb, vc, ok := g.Triangle(f)
				if !ok {
					continue
				}
				for _, v := range [3]uint32{va, vb, vc} {
					vi := int(v)
					if vi >= vertexCount {
						continue
					}
					for c, ch := range channels {
						ch.SetX(vi, values[c])
					}
					if lo < 0 || vi < lo {
						lo = vi
					}
					if vi+1 > hi {
						hi = vi + 1
					}
					res.Vertices++
				}
				res.Faces++
			}
		}
	}

	if lo >= 0 {
		for _, ch := range channels {
			ch.MarkDirty(lo, hi)
		}
	}

	if state.A != 1 {
		res.TwinCreated = ensureTwin(m.Mesh, sc)
	}

	log.Debug("painted",
		zap.Int("model", modelID),
		zap.Int("elements", len(ids)),
		zap.Int("faces", res.Faces),
		zap.Bool("twin_created", res.TwinCreated),
	)
	return res
}

// Reset paints ids back to Opaque. The transparent twin is left in place.
func (p *Painter) Reset(modelID int, ids []int) Result {
	return p.Paint(modelID, ids, Opaque, nil)
}

// ReleaseTwin detaches the model mesh's transparent twin from sc and forgets
// it. It reports whether a twin existed.
func (p *Painter) ReleaseTwin(modelID int, sc scene.Container) bool {
	m, ok := p.models.Model(modelID)
	if !ok || m.Mesh.Transparent == nil {
		return false
	}
	if sc != nil {
		sc.Remove(m.Mesh.Transparent)
	}
	m.Mesh.Transparent = nil
	logger.Named("display").Debug("transparent twin released", zap.Int("model", modelID))
	return true
}

// EnsureAttributes allocates any missing display channel on g, sized to its
// vertex count: r, g, b and h start at 0, a starts at 1. Existing channels
// keep their buffers. It reports whether anything was allocated.
func EnsureAttributes(g *geometry.Geometry) bool {
	n := g.VertexCount()
	allocated := false
	for i, name := range Channels {
		if g.Attribute(name) != nil {
			continue
		}
		data := make([]float32, n)
		if v := Opaque.values()[i]; v != 0 {
			for j := range data {
				data[j] = v
			}
		}
		g.SetAttribute(name, geometry.NewAttribute(data, 1))
		allocated = true
	}
	return allocated
}

func channelsOf(g *geometry.Geometry) [5]*geometry.Attribute {
	var out [5]*geometry.Attribute
	for i, name := range Channels {
		out[i] = g.Attribute(name)
	}
	return out
}

// ensureTwin adds a transparent copy of mesh to sc once. The twin shares the
// mesh geometry, so later paints reach it without another copy.
func ensureTwin(mesh *scene.Mesh, sc scene.Container) bool {
	if mesh.Transparent != nil || sc == nil {
		return false
	}

	twin := mesh.Clone()
	twin.Name = mesh.Name + "-transparent"
	for i, mat := range twin.Materials {
		twin.Materials[i] = newTransparent(mat)
	}

	sc.Add(twin)
	mesh.Transparent = twin
	return true
}

func newTransparent(mat *material.Material) *material.Material {
	c := mat.Clone()
	c.Transparent = true
	c.OnBeforeCompile = shader.TransparencyHook
	return c
}
