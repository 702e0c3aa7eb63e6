package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/ifcview/internal/display"
	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/engine/material"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/engine/shader"
)

func quadGeometry() *geometry.Geometry {
	return geometry.NewIndexed(
		[]float32{0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1},
		[]float32{0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0},
		[]uint32{0, 2, 1, 0, 3, 2},
	)
}

func TestQueueOrdersTransparentLast(t *testing.T) {
	sc := scene.New()

	glass := material.New("glass", mgl32.Vec3{0, 0, 1})
	glass.Transparent = true
	concrete := material.New("concrete", mgl32.Vec3{1, 1, 1})

	g := quadGeometry()
	g.AddGroup(0, 3, 0)
	g.AddGroup(3, 3, 1)
	sc.Add(scene.NewMesh(g, glass, concrete))

	calls := queue(sc)
	if len(calls) != 2 {
		t.Fatalf("expected 2 draw calls, got %d", len(calls))
	}
	if calls[0].material != concrete || calls[0].start != 3 {
		t.Errorf("first call should be the opaque group, got %+v", calls[0])
	}
	if calls[1].material != glass || calls[1].start != 0 || calls[1].count != 3 {
		t.Errorf("second call should be the transparent group, got %+v", calls[1])
	}
}

func TestQueueSkipsHiddenAndEmpty(t *testing.T) {
	sc := scene.New()
	mat := material.New("m", mgl32.Vec3{1, 1, 1})

	hidden := scene.NewMesh(quadGeometry(), mat)
	hidden.Visible = false
	sc.Add(hidden)
	sc.Add(scene.NewMesh(geometry.New(), mat))
	sc.Add(scene.NewMesh(quadGeometry()))

	if calls := queue(sc); len(calls) != 0 {
		t.Errorf("expected no draw calls, got %d", len(calls))
	}
}

func TestQueueWholeMeshWithoutGroups(t *testing.T) {
	sc := scene.New()
	mat := material.New("m", mgl32.Vec3{1, 1, 1})
	sc.Add(scene.NewMesh(quadGeometry(), mat))

	calls := queue(sc)
	if len(calls) != 1 || calls[0].start != 0 || calls[0].count != 6 {
		t.Fatalf("unexpected calls %+v", calls)
	}
	if calls[0].hook != nil {
		t.Error("plain geometry should use the base program")
	}
}

func TestHookFor(t *testing.T) {
	plain := quadGeometry()
	painted := quadGeometry()
	display.EnsureAttributes(painted)

	base := material.New("base", mgl32.Vec3{1, 1, 1})
	twin := base.Clone()
	twin.Transparent = true
	twin.OnBeforeCompile = shader.TransparencyHook

	tests := []struct {
		name string
		g    *geometry.Geometry
		mat  *material.Material
		want *shader.Hook
	}{
		{"plain", plain, base, nil},
		{"painted", painted, base, shader.DisplayHook},
		{"material hook wins", painted, twin, shader.TransparencyHook},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hookFor(tt.g, tt.mat); got != tt.want {
				t.Errorf("hookFor = %s, want %s", got.Key(), tt.want.Key())
			}
		})
	}
}

func TestPlanUploadsFirstTime(t *testing.T) {
	g := quadGeometry()
	display.EnsureAttributes(g)
	g.SetAttribute("uv", geometry.NewAttribute(make([]float32, 8), 2))

	ups, stale := planUploads(g, map[string]*uploaded{})

	if len(stale) != 0 {
		t.Errorf("unexpected stale buffers %v", stale)
	}
	if len(ups) != 7 {
		t.Fatalf("expected 7 uploads (position, normal, 5 channels), got %d", len(ups))
	}
	for _, up := range ups {
		if !up.full {
			t.Errorf("%s: first upload should be full", up.name)
		}
		if up.name == "uv" {
			t.Error("attributes without a shader location should be skipped")
		}
	}
}

func TestPlanUploadsDirtyRange(t *testing.T) {
	g := quadGeometry()
	display.EnsureAttributes(g)

	held := make(map[string]*uploaded)
	for _, name := range g.AttributeNames() {
		a := g.Attribute(name)
		held[name] = &uploaded{attr: a, count: len(a.Data)}
	}

	if ups, _ := planUploads(g, held); len(ups) != 0 {
		t.Fatalf("clean geometry should need no uploads, got %+v", ups)
	}

	g.Attribute(display.ChannelR).MarkDirty(1, 3)
	ups, _ := planUploads(g, held)
	if len(ups) != 1 {
		t.Fatalf("expected one upload, got %+v", ups)
	}
	up := ups[0]
	if up.full || up.name != display.ChannelR || up.lo != 1 || up.hi != 3 {
		t.Errorf("unexpected upload %+v", up)
	}
	if off, size := up.byteRange(); off != 4 || size != 8 {
		t.Errorf("byte range = (%d, %d), want (4, 8)", off, size)
	}
}

func TestPlanUploadsReplacedAttribute(t *testing.T) {
	g := quadGeometry()
	display.EnsureAttributes(g)

	held := make(map[string]*uploaded)
	for _, name := range g.AttributeNames() {
		a := g.Attribute(name)
		held[name] = &uploaded{attr: a, count: len(a.Data)}
	}

	g.SetAttribute(geometry.AttrPosition, geometry.NewAttribute(make([]float32, 12), 3))
	g.DeleteAttribute(display.ChannelH)

	ups, stale := planUploads(g, held)
	if len(ups) != 1 || ups[0].name != geometry.AttrPosition || !ups[0].full {
		t.Errorf("replaced attribute should be fully uploaded, got %+v", ups)
	}
	if len(stale) != 1 || stale[0] != display.ChannelH {
		t.Errorf("stale = %v, want [h]", stale)
	}
}

func TestSameSlice(t *testing.T) {
	a := []uint32{1, 2, 3}
	b := append([]uint32(nil), a...)

	if !sameSlice(a, a) {
		t.Error("slice should match itself")
	}
	if sameSlice(a, b) {
		t.Error("copies should not match")
	}
	if sameSlice(a, a[:2]) {
		t.Error("different lengths should not match")
	}
	if sameSlice(nil, []uint32{}) {
		t.Error("nil should not match an uploaded empty index")
	}
}
