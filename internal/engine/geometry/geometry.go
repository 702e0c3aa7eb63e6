// Package geometry provides indexed triangle buffers with named per-vertex
// attributes, draw groups and merging.
package geometry

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Standard attribute names.
const (
	AttrPosition = "position"
	AttrNormal   = "normal"
)

// Group is a contiguous index range drawn with one material. Start and Count
// are in index elements (vertices for non-indexed geometry).
type Group struct {
	Start         int
	Count         int
	MaterialIndex int
}

// Geometry holds vertex attributes and an optional index buffer.
// Triangle f uses vertices Index[3f], Index[3f+1], Index[3f+2].
type Geometry struct {
	Index  []uint32
	Groups []Group

	attributes map[string]*Attribute
	boundsTree any
}

// New returns an empty, non-indexed geometry.
func New() *Geometry {
	return &Geometry{attributes: make(map[string]*Attribute)}
}

// NewIndexed builds a geometry from flat positions (xyz per vertex), optional
// normals and an index buffer.
func NewIndexed(positions, normals []float32, index []uint32) *Geometry {
	g := New()
	g.SetAttribute(AttrPosition, NewAttribute(positions, 3))
	if normals != nil {
		g.SetAttribute(AttrNormal, NewAttribute(normals, 3))
	}
	g.Index = index
	return g
}

// SetAttribute stores a under name, replacing any previous attribute.
func (g *Geometry) SetAttribute(name string, a *Attribute) {
	g.attributes[name] = a
}

// Attribute returns the named attribute or nil.
func (g *Geometry) Attribute(name string) *Attribute {
	return g.attributes[name]
}

// DeleteAttribute removes the named attribute.
func (g *Geometry) DeleteAttribute(name string) {
	delete(g.attributes, name)
}

// AttributeNames returns attribute names in sorted order.
func (g *Geometry) AttributeNames() []string {
	names := make([]string, 0, len(g.attributes))
	for name := range g.attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Indexed reports whether the geometry has an index buffer.
func (g *Geometry) Indexed() bool {
	return g.Index != nil
}

// VertexCount returns the number of vertices in the position attribute.
func (g *Geometry) VertexCount() int {
	pos := g.attributes[AttrPosition]
	if pos == nil {
		return 0
	}
	return pos.Count()
}

// TriangleCount returns the number of addressable triangles.
func (g *Geometry) TriangleCount() int {
	if g.Indexed() {
		return len(g.Index) / 3
	}
	return g.VertexCount() / 3
}

// Triangle returns the vertex indices of triangle f.
func (g *Geometry) Triangle(f int) (a, b, c uint32, ok bool) {
	if f < 0 || f >= g.TriangleCount() {
		return 0, 0, 0, false
	}
	if g.Indexed() {
		return g.Index[3*f], g.Index[3*f+1], g.Index[3*f+2], true
	}
	v := uint32(3 * f)
	return v, v + 1, v + 2, true
}

// AddGroup appends a draw group.
func (g *Geometry) AddGroup(start, count, materialIndex int) {
	g.Groups = append(g.Groups, Group{Start: start, Count: count, MaterialIndex: materialIndex})
}

// BoundsTree returns the spatial index attached by an indexer, if any.
func (g *Geometry) BoundsTree() any {
	return g.boundsTree
}

// SetBoundsTree attaches a spatial index built over this geometry.
func (g *Geometry) SetBoundsTree(tree any) {
	g.boundsTree = tree
}

// Clone returns a deep copy. The bounds tree is not copied.
func (g *Geometry) Clone() *Geometry {
	c := New()
	for name, a := range g.attributes {
		c.attributes[name] = a.Clone()
	}
	if g.Index != nil {
		c.Index = make([]uint32, len(g.Index))
		copy(c.Index, g.Index)
	}
	if g.Groups != nil {
		c.Groups = make([]Group, len(g.Groups))
		copy(c.Groups, g.Groups)
	}
	return c
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBox returns an inverted box that any Expand call will reset.
func EmptyBox() Box {
	return Box{
		Min: mgl32.Vec3{1e30, 1e30, 1e30},
		Max: mgl32.Vec3{-1e30, -1e30, -1e30},
	}
}

// Empty reports whether the box contains no points.
func (b Box) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Expand grows the box to contain p.
func (b *Box) Expand(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Union grows the box to contain o.
func (b *Box) Union(o Box) {
	if o.Empty() {
		return
	}
	b.Expand(o.Min)
	b.Expand(o.Max)
}

// Center returns the box midpoint.
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent along each axis.
func (b Box) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// BoundingBox computes the box around all positions.
func (g *Geometry) BoundingBox() Box {
	box := EmptyBox()
	pos := g.attributes[AttrPosition]
	if pos == nil {
		return box
	}
	for i := 0; i < pos.Count(); i++ {
		x, y, z := pos.XYZ(i)
		box.Expand(mgl32.Vec3{x, y, z})
	}
	return box
}
