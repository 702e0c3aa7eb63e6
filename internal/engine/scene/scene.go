// Package scene holds meshes in renderable containers.
package scene

import "github.com/go-gl/mathgl/mgl32"

// Container is anything meshes can be added to and removed from.
type Container interface {
	Add(m *Mesh)
	Remove(m *Mesh)
}

// Group is an ordered container of meshes and child groups.
type Group struct {
	Name     string
	Visible  bool
	meshes   []*Mesh
	children []*Group
}

// NewGroup creates a visible, empty group.
func NewGroup(name string) *Group {
	return &Group{Name: name, Visible: true}
}

// Add appends m, detaching it from its previous container first.
// Adding a mesh the group already holds is a no-op.
func (g *Group) Add(m *Mesh) {
	if m == nil || m.parent == Container(g) {
		return
	}
	if m.parent != nil {
		m.parent.Remove(m)
	}
	g.meshes = append(g.meshes, m)
	m.parent = g
}

// Remove detaches m if g holds it.
func (g *Group) Remove(m *Mesh) {
	if m == nil {
		return
	}
	for i, cur := range g.meshes {
		if cur == m {
			g.meshes = append(g.meshes[:i], g.meshes[i+1:]...)
			m.parent = nil
			return
		}
	}
}

// Contains reports whether m is a direct child of g.
func (g *Group) Contains(m *Mesh) bool {
	for _, cur := range g.meshes {
		if cur == m {
			return true
		}
	}
	return false
}

// Meshes returns the direct mesh children in insertion order.
func (g *Group) Meshes() []*Mesh {
	return g.meshes
}

// AddGroup appends a child group.
func (g *Group) AddGroup(child *Group) {
	g.children = append(g.children, child)
}

// RemoveGroup detaches a child group.
func (g *Group) RemoveGroup(child *Group) {
	for i, cur := range g.children {
		if cur == child {
			g.children = append(g.children[:i], g.children[i+1:]...)
			return
		}
	}
}

// Walk visits every visible mesh depth-first, meshes before child groups.
func (g *Group) Walk(fn func(m *Mesh)) {
	if !g.Visible {
		return
	}
	for _, m := range g.meshes {
		if m.Visible {
			fn(m)
		}
	}
	for _, child := range g.children {
		child.Walk(fn)
	}
}

// Scene is the root container plus global lighting.
type Scene struct {
	Group
	LightDir   mgl32.Vec3
	Background mgl32.Vec3
}

// New creates an empty scene with a default directional light.
func New() *Scene {
	return &Scene{
		Group:      Group{Name: "root", Visible: true},
		LightDir:   mgl32.Vec3{-0.4, -1, -0.3}.Normalize(),
		Background: mgl32.Vec3{0.1, 0.1, 0.15},
	}
}
