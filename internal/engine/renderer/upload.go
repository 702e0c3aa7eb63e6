package renderer

import (
	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/engine/shader"
)

// uploaded is what the GPU holds for one attribute.
type uploaded struct {
	vbo   uint32
	attr  *geometry.Attribute // identity of the uploaded attribute
	count int                 // floats allocated
}

// upload is one buffer transfer. Full transfers (re)allocate the buffer;
// partial ones cover items [lo, hi).
type upload struct {
	name   string
	attr   *geometry.Attribute
	full   bool
	lo, hi int
}

// planUploads compares a geometry with what the GPU holds and lists the
// transfers needed. Attributes the shaders have no location for are ignored.
// Buffers for attributes the geometry no longer has are returned as stale.
func planUploads(g *geometry.Geometry, held map[string]*uploaded) (ups []upload, stale []string) {
	for _, name := range g.AttributeNames() {
		if _, ok := shader.AttributeLocation(name); !ok {
			continue
		}
		a := g.Attribute(name)
		prev, ok := held[name]
		switch {
		case !ok || prev.attr != a || prev.count != len(a.Data):
			ups = append(ups, upload{name: name, attr: a, full: true, lo: 0, hi: a.Count()})
		default:
			if lo, hi, dirty := a.Dirty(); dirty {
				ups = append(ups, upload{name: name, attr: a, lo: lo, hi: hi})
			}
		}
	}

	for name := range held {
		if g.Attribute(name) == nil {
			stale = append(stale, name)
		}
	}
	return ups, stale
}

// byteRange converts an item range to a byte offset and length.
func (u upload) byteRange() (offset, size int) {
	stride := u.attr.ItemSize * 4
	return u.lo * stride, (u.hi - u.lo) * stride
}
