package bvh

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/ifcview/internal/engine/geometry"
)

// slabs returns n unit quads stacked along Y at y = 0, 1, ..., n-1.
func slabs(n int) *geometry.Geometry {
	var pos []float32
	var idx []uint32
	for i := 0; i < n; i++ {
		y := float32(i)
		base := uint32(len(pos) / 3)
		pos = append(pos, 0, y, 0, 1, y, 0, 1, y, 1, 0, y, 1)
		idx = append(idx, base, base+1, base+2, base, base+2, base+3)
	}
	return geometry.NewIndexed(pos, nil, idx)
}

func TestIntersectBox(t *testing.T) {
	box := geometry.Box{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}

	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		distT float32
	}{
		{"front", Ray{Origin: mgl32.Vec3{0, 0, -5}, Direction: mgl32.Vec3{0, 0, 1}}, true, 4},
		{"inside", Ray{Origin: mgl32.Vec3{0, 0, 0}, Direction: mgl32.Vec3{0, 0, 1}}, true, 1},
		{"behind", Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, 1}}, false, 0},
		{"parallel outside", Ray{Origin: mgl32.Vec3{0, 3, -5}, Direction: mgl32.Vec3{0, 0, 1}}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, hit := tt.ray.IntersectBox(box)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && abs(d-tt.distT) > 1e-5 {
				t.Errorf("distance = %g, want %g", d, tt.distT)
			}
		})
	}
}

func TestIntersectTriangle(t *testing.T) {
	a := mgl32.Vec3{0, 0, 0}
	b := mgl32.Vec3{1, 0, 0}
	c := mgl32.Vec3{0, 0, 1}

	down := Ray{Origin: mgl32.Vec3{0.2, 3, 0.2}, Direction: mgl32.Vec3{0, -1, 0}}
	if d, hit := down.IntersectTriangle(a, b, c); !hit || abs(d-3) > 1e-5 {
		t.Errorf("expected hit at 3, got %g %v", d, hit)
	}

	miss := Ray{Origin: mgl32.Vec3{0.9, 3, 0.9}, Direction: mgl32.Vec3{0, -1, 0}}
	if _, hit := miss.IntersectTriangle(a, b, c); hit {
		t.Error("ray outside the triangle should miss")
	}

	parallel := Ray{Origin: mgl32.Vec3{0, 1, 0}, Direction: mgl32.Vec3{1, 0, 0}}
	if _, hit := parallel.IntersectTriangle(a, b, c); hit {
		t.Error("parallel ray should miss")
	}
}

func TestRaycastFindsClosest(t *testing.T) {
	g := slabs(20)
	tree := Build(g, 2)

	if tree.Len() != 40 {
		t.Fatalf("expected 40 triangles, got %d", tree.Len())
	}

	r := Ray{Origin: mgl32.Vec3{0.25, 100, 0.75}, Direction: mgl32.Vec3{0, -1, 0}}
	hit, ok := tree.Raycast(r)
	if !ok {
		t.Fatal("expected a hit")
	}
	// Top slab is y=19, its triangles are faces 38 and 39.
	if hit.Face != 39 {
		t.Errorf("expected face 39, got %d", hit.Face)
	}
	if abs(hit.Distance-81) > 1e-4 {
		t.Errorf("expected distance 81, got %g", hit.Distance)
	}
	if abs(hit.Point[1]-19) > 1e-4 {
		t.Errorf("expected hit at y=19, got %v", hit.Point)
	}
}

func TestRaycastFromInside(t *testing.T) {
	tree := Build(slabs(10), 1)

	r := Ray{Origin: mgl32.Vec3{0.25, 4.5, 0.75}, Direction: mgl32.Vec3{0, 1, 0}}
	hit, ok := tree.Raycast(r)
	if !ok {
		t.Fatal("expected a hit")
	}
	if abs(hit.Point[1]-5) > 1e-4 {
		t.Errorf("expected nearest slab y=5, got %v", hit.Point)
	}
}

func TestRaycastFuncSkipsRejectedFaces(t *testing.T) {
	tree := Build(slabs(20), 2)

	r := Ray{Origin: mgl32.Vec3{0.25, 100, 0.75}, Direction: mgl32.Vec3{0, -1, 0}}
	hit, ok := tree.RaycastFunc(r, func(face int) bool { return face < 20 })
	if !ok {
		t.Fatal("expected a hit")
	}
	// Faces 18 and 19 belong to slab y=9.
	if abs(hit.Point[1]-9) > 1e-4 {
		t.Errorf("expected hit on slab y=9, got %v", hit.Point)
	}

	if _, ok := tree.RaycastFunc(r, func(int) bool { return false }); ok {
		t.Error("rejecting every face should miss")
	}
}

func TestRaycastMiss(t *testing.T) {
	tree := Build(slabs(3), 4)
	r := Ray{Origin: mgl32.Vec3{5, 10, 5}, Direction: mgl32.Vec3{0, -1, 0}}
	if _, ok := tree.Raycast(r); ok {
		t.Error("expected a miss")
	}
}

func TestBuilderAttachesTree(t *testing.T) {
	g := slabs(4)
	NewBuilder(0).Index(g)

	tree, ok := TreeOf(g)
	if !ok {
		t.Fatal("no tree attached")
	}
	if tree.Len() != 8 {
		t.Errorf("expected 8 triangles, got %d", tree.Len())
	}
	if b := tree.Bounds(); b.Max[1] != 3 {
		t.Errorf("unexpected bounds %+v", b)
	}
}

func TestEmptyGeometry(t *testing.T) {
	g := geometry.New()
	NewBuilder(4).Index(g)

	tree, ok := TreeOf(g)
	if !ok {
		t.Fatal("empty geometry should still get a tree")
	}
	if !tree.Bounds().Empty() {
		t.Error("empty tree should have empty bounds")
	}
	if _, hit := tree.Raycast(Ray{Direction: mgl32.Vec3{0, 0, 1}}); hit {
		t.Error("empty tree cannot be hit")
	}
}

func TestScreenToRayCenter(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	inv := proj.Mul4(view).Inv()

	r := ScreenToRay(400, 400, 800, 800, inv)

	want := mgl32.Vec3{0, 0, -1}
	if r.Direction.Sub(want).Len() > 1e-3 {
		t.Errorf("center ray direction = %v, want %v", r.Direction, want)
	}
	if gomath.Abs(float64(r.Origin[2]-9.9)) > 1e-2 {
		t.Errorf("center ray should start on the near plane, got %v", r.Origin)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
