// Package fixture loads building descriptions from YAML and turns them into
// model elements. It stands in for an IFC loader: each element carries the
// id, type and material an IFC product would, with simple shapes as geometry.
package fixture

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/ifcview/internal/engine/material"
	"github.com/Faultbox/ifcview/internal/engine/model"
)

// Building is a parsed fixture file.
type Building struct {
	Name      string         `yaml:"name"`
	ModelID   int            `yaml:"model_id"`
	Materials []MaterialSpec `yaml:"materials"`
	Elements  []ElementSpec  `yaml:"elements"`
}

// MaterialSpec describes one material. Opacity defaults to 1.
type MaterialSpec struct {
	ID      int        `yaml:"id"`
	Name    string     `yaml:"name"`
	Color   [3]float32 `yaml:"color"`
	Opacity *float32   `yaml:"opacity,omitempty"`
}

// ElementSpec describes one building element. Exactly one of Box, Quad and
// Mesh must be set.
type ElementSpec struct {
	ID       int       `yaml:"id"`
	Type     string    `yaml:"type"`
	Name     string    `yaml:"name,omitempty"`
	Material int       `yaml:"material"`
	Box      *BoxSpec  `yaml:"box,omitempty"`
	Quad     *QuadSpec `yaml:"quad,omitempty"`
	Mesh     *MeshSpec `yaml:"mesh,omitempty"`
}

// BoxSpec is an axis-aligned box.
type BoxSpec struct {
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`
}

// QuadSpec is a horizontal square with its corner at Origin.
type QuadSpec struct {
	Origin [3]float32 `yaml:"origin"`
	Size   float32    `yaml:"size"`
}

// MeshSpec is raw indexed triangle data. Normals are optional.
type MeshSpec struct {
	Positions []float32 `yaml:"positions"`
	Normals   []float32 `yaml:"normals,omitempty"`
	Indices   []uint32  `yaml:"indices"`
}

// Load reads and parses a fixture file.
func Load(path string) (*Building, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a fixture document.
func Parse(data []byte) (*Building, error) {
	var b Building
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks ids, references and shapes. Every problem found is
// reported.
func (b *Building) Validate() error {
	var errs []error

	mats := make(map[int]bool, len(b.Materials))
	for _, m := range b.Materials {
		if mats[m.ID] {
			errs = append(errs, fmt.Errorf("material %d: duplicate id", m.ID))
		}
		mats[m.ID] = true
		if m.Opacity != nil && (*m.Opacity < 0 || *m.Opacity > 1) {
			errs = append(errs, fmt.Errorf("material %d: opacity %g out of range", m.ID, *m.Opacity))
		}
	}

	seen := make(map[int]bool, len(b.Elements))
	for _, el := range b.Elements {
		if seen[el.ID] {
			errs = append(errs, fmt.Errorf("element %d: duplicate id", el.ID))
		}
		seen[el.ID] = true

		if !mats[el.Material] {
			errs = append(errs, fmt.Errorf("element %d: unknown material %d", el.ID, el.Material))
		}
		shapes := 0
		for _, set := range []bool{el.Box != nil, el.Quad != nil, el.Mesh != nil} {
			if set {
				shapes++
			}
		}
		if shapes != 1 {
			errs = append(errs, fmt.Errorf("element %d: expected exactly one shape, got %d", el.ID, shapes))
		}
		if el.Mesh != nil {
			if err := el.Mesh.validate(); err != nil {
				errs = append(errs, fmt.Errorf("element %d: %w", el.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (m *MeshSpec) validate() error {
	if len(m.Positions)%3 != 0 {
		return fmt.Errorf("positions length %d is not a multiple of 3", len(m.Positions))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index length %d is not a multiple of 3", len(m.Indices))
	}
	if m.Normals != nil && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("normals length %d does not match positions length %d", len(m.Normals), len(m.Positions))
	}
	n := uint32(len(m.Positions) / 3)
	for _, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("index %d out of range for %d vertices", idx, n)
		}
	}
	return nil
}

// MaterialSet creates one material per spec, keyed by material id. Each
// call returns new materials with new identities.
func (b *Building) MaterialSet() map[int]*material.Material {
	mats := make(map[int]*material.Material, len(b.Materials))
	for _, spec := range b.Materials {
		m := material.New(spec.Name, mgl32.Vec3(spec.Color))
		if spec.Opacity != nil {
			m.Opacity = *spec.Opacity
			m.Transparent = m.Opacity < 1
		}
		mats[spec.ID] = m
	}
	return mats
}

// ModelElements converts the element specs into model elements.
func (b *Building) ModelElements() []model.Element {
	out := make([]model.Element, 0, len(b.Elements))
	for _, el := range b.Elements {
		switch {
		case el.Box != nil:
			out = append(out, model.Box(el.ID, el.Material, mgl32.Vec3(el.Box.Min), mgl32.Vec3(el.Box.Max)))
		case el.Quad != nil:
			o := el.Quad.Origin
			out = append(out, model.Quad(el.ID, el.Material, o[0], o[1], o[2], el.Quad.Size))
		case el.Mesh != nil:
			out = append(out, model.Element{
				ID:         el.ID,
				MaterialID: el.Material,
				Positions:  el.Mesh.Positions,
				Normals:    el.Mesh.Normals,
				Indices:    el.Mesh.Indices,
			})
		}
	}
	return out
}

// Model builds the merged model for the building.
func (b *Building) Model() (*model.Model, error) {
	m, err := model.Build(b.ModelID, b.ModelElements(), b.MaterialSet())
	if err != nil {
		return nil, fmt.Errorf("building model %d: %w", b.ModelID, err)
	}
	return m, nil
}

// Element returns the spec for id.
func (b *Building) Element(id int) (ElementSpec, bool) {
	for _, el := range b.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return ElementSpec{}, false
}

// IDsOfType returns the ids of elements with the given type, in file order.
func (b *Building) IDsOfType(typ string) []int {
	var ids []int
	for _, el := range b.Elements {
		if el.Type == typ {
			ids = append(ids, el.ID)
		}
	}
	return ids
}

// Types returns element counts per type.
func (b *Building) Types() map[string]int {
	counts := make(map[string]int)
	for _, el := range b.Elements {
		counts[el.Type]++
	}
	return counts
}
