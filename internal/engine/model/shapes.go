package model

import "github.com/go-gl/mathgl/mgl32"

// Box returns an element shaped as an axis-aligned box: 8 shared corners,
// 12 triangles.
func Box(id, materialID int, min, max mgl32.Vec3) Element {
	positions := []float32{
		min[0], min[1], min[2],
		max[0], min[1], min[2],
		max[0], max[1], min[2],
		min[0], max[1], min[2],
		min[0], min[1], max[2],
		max[0], min[1], max[2],
		max[0], max[1], max[2],
		min[0], max[1], max[2],
	}
	indices := []uint32{
		0, 2, 1, 0, 3, 2, // -Z
		4, 5, 6, 4, 6, 7, // +Z
		0, 1, 5, 0, 5, 4, // -Y
		3, 7, 6, 3, 6, 2, // +Y
		0, 4, 7, 0, 7, 3, // -X
		1, 2, 6, 1, 6, 5, // +X
	}
	return Element{ID: id, MaterialID: materialID, Positions: positions, Indices: indices}
}

// Quad returns a single-sided horizontal square element at height y.
func Quad(id, materialID int, x, y, z, size float32) Element {
	return Element{
		ID:         id,
		MaterialID: materialID,
		Positions: []float32{
			x, y, z,
			x + size, y, z,
			x + size, y, z + size,
			x, y, z + size,
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
}
