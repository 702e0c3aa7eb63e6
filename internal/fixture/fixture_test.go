package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `
name: "test house"
model_id: 7
materials:
  - id: 1
    name: concrete
    color: [0.7, 0.7, 0.7]
  - id: 2
    name: glass
    color: [0.5, 0.7, 0.9]
    opacity: 0.3
elements:
  - id: 10
    type: IfcSlab
    material: 1
    box: {min: [0, 0, 0], max: [4, 0.3, 4]}
  - id: 11
    type: IfcWindow
    material: 2
    quad: {origin: [1, 1, 0], size: 1}
  - id: 12
    type: IfcPlate
    material: 2
    mesh:
      positions: [0, 2, 0, 1, 2, 0, 0, 2, 1]
      indices: [0, 2, 1]
`

func TestParse(t *testing.T) {
	b, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if b.Name != "test house" || b.ModelID != 7 {
		t.Errorf("unexpected header %q / %d", b.Name, b.ModelID)
	}
	if len(b.Materials) != 2 || len(b.Elements) != 3 {
		t.Fatalf("expected 2 materials and 3 elements, got %d and %d", len(b.Materials), len(b.Elements))
	}
	if b.Elements[0].Box == nil || b.Elements[1].Quad == nil || b.Elements[2].Mesh == nil {
		t.Error("shapes not decoded")
	}
	if b.Materials[0].Opacity != nil {
		t.Error("omitted opacity should stay nil")
	}
}

func TestMaterialSet(t *testing.T) {
	b, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	mats := b.MaterialSet()
	if mats[1].Opacity != 1 || mats[1].Transparent {
		t.Errorf("concrete should be opaque, got opacity %g", mats[1].Opacity)
	}
	if mats[2].Opacity != 0.3 || !mats[2].Transparent {
		t.Errorf("glass should be transparent, got opacity %g", mats[2].Opacity)
	}

	again := b.MaterialSet()
	if again[1].ID == mats[1].ID {
		t.Error("each call should create new material identities")
	}
}

func TestModel(t *testing.T) {
	b, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	m, err := b.Model()
	if err != nil {
		t.Fatalf("Model: %v", err)
	}
	if m.ID != 7 {
		t.Errorf("expected model id 7, got %d", m.ID)
	}
	tests := map[int]int{10: 12, 11: 2, 12: 1}
	for id, faces := range tests {
		if got := len(m.Faces[id]); got != faces {
			t.Errorf("element %d: expected %d faces, got %d", id, faces, got)
		}
	}
	if len(m.Items[2].Geometries) != 2 {
		t.Errorf("expected 2 glass geometries, got %d", len(m.Items[2].Geometries))
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "syntax",
			doc:  "elements: [unclosed",
			want: "parsing fixture",
		},
		{
			name: "unknown material",
			doc:  "materials: [{id: 1}]\nelements: [{id: 1, material: 9, quad: {size: 1}}]",
			want: "unknown material 9",
		},
		{
			name: "no shape",
			doc:  "materials: [{id: 1}]\nelements: [{id: 1, material: 1}]",
			want: "exactly one shape",
		},
		{
			name: "two shapes",
			doc:  "materials: [{id: 1}]\nelements: [{id: 1, material: 1, quad: {size: 1}, box: {max: [1, 1, 1]}}]",
			want: "exactly one shape",
		},
		{
			name: "duplicate material",
			doc:  "materials: [{id: 1}, {id: 1}]",
			want: "duplicate id",
		},
		{
			name: "opacity",
			doc:  "materials: [{id: 1, opacity: 2}]",
			want: "opacity",
		},
		{
			name: "duplicate element",
			doc:  "materials: [{id: 1}]\nelements: [{id: 5, material: 1, quad: {size: 1}}, {id: 5, material: 1, quad: {size: 2}}]",
			want: "element 5: duplicate id",
		},
		{
			name: "mesh index out of range",
			doc:  "materials: [{id: 1}]\nelements: [{id: 1, material: 1, mesh: {positions: [0, 0, 0, 1, 0, 0, 0, 0, 1], indices: [0, 1, 7]}}]",
			want: "index 7 out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestModelRejectsBadMesh(t *testing.T) {
	doc := `
materials: [{id: 1}]
elements:
  - id: 1
    material: 1
    mesh: {positions: [0, 0, 0], indices: [0, 1, 2]}
`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Error("Parse should reject an out-of-range index")
	}

	// Buildings assembled in code skip Parse; Model still refuses them.
	b := &Building{
		ModelID:   1,
		Materials: []MaterialSpec{{ID: 1}},
		Elements: []ElementSpec{{
			ID:       1,
			Material: 1,
			Mesh:     &MeshSpec{Positions: []float32{0, 0, 0}, Indices: []uint32{0, 1, 2}},
		}},
	}
	if _, err := b.Model(); err == nil {
		t.Error("expected out-of-range index error")
	}
}

func TestValidateReportsEveryError(t *testing.T) {
	doc := `
materials: [{id: 1}, {id: 1}]
elements:
  - {id: 2, material: 9, quad: {size: 1}}
  - {id: 2, material: 1}
`
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"material 1: duplicate id", "unknown material 9", "element 2: duplicate id", "exactly one shape"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "house.yaml")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(b.Elements) != 3 {
		t.Errorf("expected 3 elements, got %d", len(b.Elements))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLookups(t *testing.T) {
	b, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if el, ok := b.Element(11); !ok || el.Type != "IfcWindow" {
		t.Errorf("Element(11) = %+v, %v", el, ok)
	}
	if _, ok := b.Element(99); ok {
		t.Error("Element(99) should not exist")
	}
	if ids := b.IDsOfType("IfcSlab"); len(ids) != 1 || ids[0] != 10 {
		t.Errorf("IDsOfType(IfcSlab) = %v", ids)
	}
	if counts := b.Types(); counts["IfcPlate"] != 1 || len(counts) != 3 {
		t.Errorf("unexpected type counts %v", counts)
	}
}

func TestGenerate(t *testing.T) {
	b := Generate(1, 2, 3)

	if err := b.Validate(); err != nil {
		t.Fatalf("generated building invalid: %v", err)
	}
	counts := b.Types()
	if counts[TypeSlab] != 2 {
		t.Errorf("expected 2 slabs, got %d", counts[TypeSlab])
	}
	if counts[TypeColumn] != 2*4*4 {
		t.Errorf("expected 32 columns, got %d", counts[TypeColumn])
	}
	if counts[TypeWindow] != 2*3 {
		t.Errorf("expected 6 windows, got %d", counts[TypeWindow])
	}
	for i, el := range b.Elements {
		if el.ID != i+1 {
			t.Fatalf("element %d has id %d, want sequential ids", i, el.ID)
		}
	}

	m, err := b.Model()
	if err != nil {
		t.Fatalf("Model: %v", err)
	}
	if got := m.Mesh.Geometry.TriangleCount(); got != len(b.Elements)*12 {
		t.Errorf("expected %d triangles, got %d", len(b.Elements)*12, got)
	}
}
