// Package bvh builds bounding volume hierarchies over triangle geometry and
// answers ray queries against them.
package bvh

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/logger"
)

// DefaultLeafSize is the triangle count at which splitting stops.
const DefaultLeafSize = 8

// Builder indexes geometries for picking. It satisfies the subset manager's
// indexer contract.
type Builder struct {
	LeafSize int
}

// NewBuilder creates a builder; leafSize <= 0 selects DefaultLeafSize.
func NewBuilder(leafSize int) *Builder {
	if leafSize <= 0 {
		leafSize = DefaultLeafSize
	}
	return &Builder{LeafSize: leafSize}
}

// Index builds a tree over g and attaches it with SetBoundsTree, replacing
// any previous tree.
func (b *Builder) Index(g *geometry.Geometry) {
	tree := Build(g, b.LeafSize)
	g.SetBoundsTree(tree)
	logger.Named("bvh").Debug("geometry indexed",
		zap.Int("triangles", len(tree.tris)),
		zap.Int("nodes", len(tree.nodes)),
	)
}

// TreeOf returns the tree attached to g by a Builder.
func TreeOf(g *geometry.Geometry) (*Tree, bool) {
	t, ok := g.BoundsTree().(*Tree)
	return t, ok
}

// Tree is a flattened BVH. Leaves reference a run of tris.
type Tree struct {
	geom  *geometry.Geometry
	nodes []node
	tris  []int
}

type node struct {
	box   geometry.Box
	left  int // Child node indices; -1 for leaves
	right int
	start int // Leaf range in tris
	count int
}

// Hit is the closest triangle along a ray.
type Hit struct {
	Face     int
	Distance float32
	Point    mgl32.Vec3
}

type triRef struct {
	face     int
	box      geometry.Box
	centroid mgl32.Vec3
}

// Build constructs a tree over every triangle of g.
func Build(g *geometry.Geometry, leafSize int) *Tree {
	if leafSize <= 0 {
		leafSize = DefaultLeafSize
	}
	t := &Tree{geom: g}

	refs := make([]triRef, 0, g.TriangleCount())
	for f := 0; f < g.TriangleCount(); f++ {
		a, b, c, ok := t.vertices(f)
		if !ok {
			continue
		}
		box := geometry.EmptyBox()
		box.Expand(a)
		box.Expand(b)
		box.Expand(c)
		refs = append(refs, triRef{face: f, box: box, centroid: a.Add(b).Add(c).Mul(1.0 / 3)})
	}
	if len(refs) == 0 {
		return t
	}

	t.build(refs, leafSize)
	return t
}

func (t *Tree) build(refs []triRef, leafSize int) int {
	box := geometry.EmptyBox()
	centroids := geometry.EmptyBox()
	for _, r := range refs {
		box.Union(r.box)
		centroids.Expand(r.centroid)
	}

	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{box: box, left: -1, right: -1})

	if len(refs) <= leafSize {
		t.nodes[idx].start = len(t.tris)
		t.nodes[idx].count = len(refs)
		for _, r := range refs {
			t.tris = append(t.tris, r.face)
		}
		return idx
	}

	// Median split along the axis with the widest centroid spread.
	size := centroids.Size()
	axis := 0
	if size[1] > size[axis] {
		axis = 1
	}
	if size[2] > size[axis] {
		axis = 2
	}
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].centroid[axis] < refs[j].centroid[axis]
	})
	mid := len(refs) / 2

	left := t.build(refs[:mid], leafSize)
	right := t.build(refs[mid:], leafSize)
	t.nodes[idx].left = left
	t.nodes[idx].right = right
	return idx
}

func (t *Tree) vertices(f int) (a, b, c mgl32.Vec3, ok bool) {
	pos := t.geom.Attribute(geometry.AttrPosition)
	if pos == nil {
		return a, b, c, false
	}
	ia, ib, ic, ok := t.geom.Triangle(f)
	if !ok {
		return a, b, c, false
	}
	n := uint32(pos.Count())
	if ia >= n || ib >= n || ic >= n {
		return a, b, c, false
	}
	return vec(pos, ia), vec(pos, ib), vec(pos, ic), true
}

func vec(a *geometry.Attribute, i uint32) mgl32.Vec3 {
	x, y, z := a.XYZ(int(i))
	return mgl32.Vec3{x, y, z}
}

// Len returns the number of indexed triangles.
func (t *Tree) Len() int {
	return len(t.tris)
}

// Bounds returns the root box. Empty trees return an empty box.
func (t *Tree) Bounds() geometry.Box {
	if len(t.nodes) == 0 {
		return geometry.EmptyBox()
	}
	return t.nodes[0].box
}

// Raycast returns the closest triangle hit by r.
func (t *Tree) Raycast(r Ray) (Hit, bool) {
	return t.RaycastFunc(r, nil)
}

// RaycastFunc returns the closest triangle hit by r among the faces accept
// reports true for. A nil accept takes every face.
func (t *Tree) RaycastFunc(r Ray, accept func(face int) bool) (Hit, bool) {
	best := Hit{Face: -1}
	if len(t.nodes) == 0 {
		return best, false
	}

	stack := []int{0}
	for len(stack) > 0 {
		n := t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		d, ok := r.IntersectBox(n.box)
		if !ok {
			continue
		}
		if contains(n.box, r.Origin) {
			d = 0
		}
		if best.Face >= 0 && d > best.Distance {
			continue
		}
		if n.left < 0 {
			for _, f := range t.tris[n.start : n.start+n.count] {
				if accept != nil && !accept(f) {
					continue
				}
				a, b, c, _ := t.vertices(f)
				if dist, hit := r.IntersectTriangle(a, b, c); hit && (best.Face < 0 || dist < best.Distance) {
					best = Hit{Face: f, Distance: dist}
				}
			}
			continue
		}
		stack = append(stack, n.left, n.right)
	}

	if best.Face < 0 {
		return best, false
	}
	best.Point = r.At(best.Distance)
	return best, true
}

func contains(b geometry.Box, p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}
