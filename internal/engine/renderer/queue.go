package renderer

import (
	"github.com/Faultbox/ifcview/internal/display"
	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/engine/material"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/engine/shader"
)

// drawCall is one glDrawElements (or glDrawArrays) range of a mesh.
type drawCall struct {
	mesh     *scene.Mesh
	material *material.Material
	hook     *shader.Hook
	start    int
	count    int
}

// queue flattens the scene into draw calls: opaque calls in scene order,
// then transparent ones. Empty ranges and meshes without material are
// dropped.
func queue(sc *scene.Scene) []drawCall {
	var opaque, transparent []drawCall

	sc.Walk(func(m *scene.Mesh) {
		g := m.Geometry
		if g == nil {
			return
		}
		emit := func(start, count, materialIndex int) {
			mat := m.Material(materialIndex)
			if mat == nil || count <= 0 {
				return
			}
			dc := drawCall{mesh: m, material: mat, hook: hookFor(g, mat), start: start, count: count}
			if mat.Transparent {
				transparent = append(transparent, dc)
			} else {
				opaque = append(opaque, dc)
			}
		}

		if len(g.Groups) == 0 {
			emit(0, drawCount(g), 0)
			return
		}
		for _, grp := range g.Groups {
			emit(grp.Start, grp.Count, grp.MaterialIndex)
		}
	})

	return append(opaque, transparent...)
}

// drawCount is the number of indices, or vertices when not indexed.
func drawCount(g *geometry.Geometry) int {
	if g.Indexed() {
		return len(g.Index)
	}
	return g.VertexCount()
}

// hookFor picks the pre-compile hook for a material: its own hook first,
// then the display hook when the geometry carries display channels.
func hookFor(g *geometry.Geometry, mat *material.Material) *shader.Hook {
	if mat.OnBeforeCompile != nil {
		return mat.OnBeforeCompile
	}
	if g.Attribute(display.ChannelA) != nil {
		return shader.DisplayHook
	}
	return nil
}
