package geometry

// Attribute is a per-vertex float32 buffer with ItemSize components per
// vertex. Writes are not tracked automatically: writers mark the vertex range
// they touched with MarkDirty once per batch, and the renderer uploads that
// range and calls ClearDirty.
type Attribute struct {
	Data     []float32
	ItemSize int

	version uint32
	dirtyLo int
	dirtyHi int
}

// NewAttribute wraps data without copying it.
func NewAttribute(data []float32, itemSize int) *Attribute {
	if itemSize <= 0 {
		itemSize = 1
	}
	return &Attribute{Data: data, ItemSize: itemSize}
}

// Count returns the number of vertices the attribute covers.
func (a *Attribute) Count() int {
	return len(a.Data) / a.ItemSize
}

// X returns the first component of vertex i.
func (a *Attribute) X(i int) float32 {
	return a.Data[i*a.ItemSize]
}

// SetX writes the first component of vertex i.
func (a *Attribute) SetX(i int, v float32) {
	a.Data[i*a.ItemSize] = v
}

// XYZ returns the first three components of vertex i.
func (a *Attribute) XYZ(i int) (x, y, z float32) {
	o := i * a.ItemSize
	return a.Data[o], a.Data[o+1], a.Data[o+2]
}

// MarkDirty extends the pending upload range to include vertices [lo, hi).
// The range is clamped to the attribute's vertex count.
func (a *Attribute) MarkDirty(lo, hi int) {
	if lo < 0 {
		lo = 0
	}
	if n := a.Count(); hi > n {
		hi = n
	}
	if lo >= hi {
		return
	}
	if a.dirtyHi == a.dirtyLo {
		a.dirtyLo, a.dirtyHi = lo, hi
	} else {
		a.dirtyLo = min(a.dirtyLo, lo)
		a.dirtyHi = max(a.dirtyHi, hi)
	}
	a.version++
}

// MarkAllDirty schedules the whole attribute for upload.
func (a *Attribute) MarkAllDirty() {
	a.MarkDirty(0, a.Count())
}

// Dirty returns the pending upload range in vertices.
func (a *Attribute) Dirty() (lo, hi int, ok bool) {
	return a.dirtyLo, a.dirtyHi, a.dirtyHi > a.dirtyLo
}

// ClearDirty is called by the renderer once the pending range is uploaded.
func (a *Attribute) ClearDirty() {
	a.dirtyLo, a.dirtyHi = 0, 0
}

// Version increases on every MarkDirty that covered at least one vertex.
func (a *Attribute) Version() uint32 {
	return a.version
}

// Clone returns a deep copy with no pending upload.
func (a *Attribute) Clone() *Attribute {
	data := make([]float32, len(a.Data))
	copy(data, a.Data)
	return &Attribute{Data: data, ItemSize: a.ItemSize}
}
