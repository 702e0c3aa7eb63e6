package shader

import (
	"strings"
	"testing"
)

func TestBaseSourceKeepsMarkers(t *testing.T) {
	src := Mesh()
	for _, marker := range []string{ChunkVertexPars, ChunkVertexMain} {
		if !strings.Contains(src.Vertex, marker) {
			t.Errorf("vertex source missing %s", marker)
		}
	}
	for _, marker := range []string{ChunkFragmentPars, ChunkFragmentMain} {
		if !strings.Contains(src.Fragment, marker) {
			t.Errorf("fragment source missing %s", marker)
		}
	}
}

func TestTransparencyHook(t *testing.T) {
	src := Mesh()
	TransparencyHook.Apply(&src)

	for _, want := range []string{"in float a;", "in float h;", "vAlpha = a;"} {
		if !strings.Contains(src.Vertex, want) {
			t.Errorf("vertex source missing %q", want)
		}
	}
	if !strings.Contains(src.Fragment, "color.a = vAlpha;") {
		t.Error("fragment source does not take alpha from the channel")
	}
	if strings.Contains(src.Vertex+src.Fragment, "//#display") {
		t.Error("hook left chunk markers behind")
	}
}

func TestDisplayHookDiscardsTranslucent(t *testing.T) {
	src := Mesh()
	DisplayHook.Apply(&src)

	if !strings.Contains(src.Fragment, "if (vAlpha < 0.999) discard;") {
		t.Error("opaque pass should discard translucent fragments")
	}
	if strings.Contains(src.Fragment, "color.a = vAlpha;") {
		t.Error("opaque pass should keep material alpha")
	}
}

func TestHookLocationsMatchTable(t *testing.T) {
	src := Mesh()
	TransparencyHook.Apply(&src)

	for _, name := range []string{"r", "g", "b", "a", "h"} {
		loc, ok := AttributeLocation(name)
		if !ok {
			t.Fatalf("no location for %q", name)
		}
		decl := "layout (location = " + string(rune('0'+loc)) + ") in float " + name + ";"
		if !strings.Contains(src.Vertex, decl) {
			t.Errorf("vertex source missing %q", decl)
		}
	}
}

func TestNilHook(t *testing.T) {
	var h *Hook
	src := Mesh()
	h.Apply(&src)

	if src != Mesh() {
		t.Error("nil hook changed the source")
	}
	if h.Key() != "base" {
		t.Errorf("expected key base, got %s", h.Key())
	}
}
