package geometry

import (
	"errors"
	"fmt"
)

// ErrIncompatible is returned by Merge when inputs differ in layout.
var ErrIncompatible = errors.New("incompatible geometries")

// Merge concatenates geometries into a new one. Indices are rebased onto the
// merged vertex range. With useGroups set, input i becomes draw group i with
// material index i; input groups are dropped either way.
//
// Geometries without vertices contribute nothing apart from their (empty)
// group. All other inputs must agree on being indexed and on attribute names
// and item sizes.
func Merge(geoms []*Geometry, useGroups bool) (*Geometry, error) {
	out := New()

	var layout *Geometry
	for i, g := range geoms {
		if g == nil || g.VertexCount() == 0 {
			continue
		}
		if layout == nil {
			layout = g
			continue
		}
		if err := compatible(layout, g); err != nil {
			return nil, fmt.Errorf("merging geometry %d: %w", i, err)
		}
	}

	if layout != nil {
		for _, name := range layout.AttributeNames() {
			a := layout.attributes[name]
			out.attributes[name] = &Attribute{ItemSize: a.ItemSize}
		}
		if layout.Indexed() {
			out.Index = []uint32{}
		}
	}

	var vertexOffset uint32
	drawOffset := 0
	for i, g := range geoms {
		count := 0
		if g != nil && g.VertexCount() > 0 {
			for name, a := range out.attributes {
				a.Data = append(a.Data, g.attributes[name].Data...)
			}
			if g.Indexed() {
				for _, idx := range g.Index {
					out.Index = append(out.Index, idx+vertexOffset)
				}
				count = len(g.Index)
			} else {
				count = g.VertexCount()
			}
			vertexOffset += uint32(g.VertexCount())
		}
		if useGroups {
			out.AddGroup(drawOffset, count, i)
		}
		drawOffset += count
	}

	return out, nil
}

func compatible(a, b *Geometry) error {
	if a.Indexed() != b.Indexed() {
		return fmt.Errorf("%w: indexed and non-indexed inputs", ErrIncompatible)
	}
	if len(a.attributes) != len(b.attributes) {
		return fmt.Errorf("%w: attribute sets %v and %v", ErrIncompatible, a.AttributeNames(), b.AttributeNames())
	}
	for name, attr := range a.attributes {
		other, ok := b.attributes[name]
		if !ok {
			return fmt.Errorf("%w: missing attribute %q", ErrIncompatible, name)
		}
		if other.ItemSize != attr.ItemSize {
			return fmt.Errorf("%w: attribute %q item size %d vs %d", ErrIncompatible, name, attr.ItemSize, other.ItemSize)
		}
	}
	return nil
}
