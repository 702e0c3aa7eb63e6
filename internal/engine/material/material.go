// Package material describes how a mesh surface is shaded.
package material

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/ifcview/internal/engine/shader"
)

// Material is a flat-colored surface. ID is its identity: subset caches and
// program caches key on it, never on Name.
type Material struct {
	ID          uuid.UUID
	Name        string
	Color       mgl32.Vec3
	Opacity     float32
	Transparent bool
	DepthWrite  bool
	DoubleSided bool

	// OnBeforeCompile rewrites the mesh shader sources before the renderer
	// compiles this material's program.
	OnBeforeCompile *shader.Hook
}

// New creates an opaque material with a fresh identity.
func New(name string, color mgl32.Vec3) *Material {
	return &Material{
		ID:         uuid.New(),
		Name:       name,
		Color:      color,
		Opacity:    1,
		DepthWrite: true,
	}
}

// Clone copies m under a new identity.
func (m *Material) Clone() *Material {
	c := *m
	c.ID = uuid.New()
	return &c
}

// RGBA returns the color with opacity as alpha.
func (m *Material) RGBA() mgl32.Vec4 {
	return m.Color.Vec4(m.Opacity)
}
