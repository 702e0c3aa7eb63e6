package scene

import (
	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/engine/material"
)

// Mesh pairs a geometry with its materials. With draw groups on the geometry,
// group.MaterialIndex selects from Materials; otherwise Materials[0] is used.
type Mesh struct {
	Name      string
	Geometry  *geometry.Geometry
	Materials []*material.Material
	ModelID   int
	Visible   bool

	// Transparent is the mesh's transparent twin, owned by this mesh.
	Transparent *Mesh

	parent Container
}

// NewMesh creates a visible mesh.
func NewMesh(g *geometry.Geometry, mats ...*material.Material) *Mesh {
	return &Mesh{Geometry: g, Materials: mats, Visible: true}
}

// Material returns the material for draw group materialIndex, falling back
// to the first material.
func (m *Mesh) Material(materialIndex int) *material.Material {
	if materialIndex >= 0 && materialIndex < len(m.Materials) {
		return m.Materials[materialIndex]
	}
	if len(m.Materials) > 0 {
		return m.Materials[0]
	}
	return nil
}

// Clone returns a detached copy sharing geometry and material references.
// The twin is not carried over.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Name:     m.Name,
		Geometry: m.Geometry,
		ModelID:  m.ModelID,
		Visible:  m.Visible,
	}
	c.Materials = append([]*material.Material(nil), m.Materials...)
	return c
}

// Parent returns the container holding m, or nil.
func (m *Mesh) Parent() Container {
	return m.parent
}
