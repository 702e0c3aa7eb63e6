// Package model holds loaded building models: the merged mesh, the
// element-to-triangle map, and per-material element geometries.
package model

import (
	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/engine/material"
	"github.com/Faultbox/ifcview/internal/engine/scene"
)

// Model is one loaded building model.
type Model struct {
	ID int

	// Mesh renders every element of the model; one draw group per material.
	Mesh *scene.Mesh

	// Faces maps an element id to the triangles it owns in Mesh, in order.
	Faces map[int][]int

	// Items maps a material id to that material's elements.
	Items map[int]*MaterialItems

	owners []int // triangle -> element id, built on first ElementAt
}

// MaterialItems holds the standalone geometry of every element that uses
// one material.
type MaterialItems struct {
	Material   *material.Material
	Geometries map[int]*geometry.Geometry // Keyed by element id
}

// Element is one building element as delivered by a loader.
type Element struct {
	ID         int
	MaterialID int
	Positions  []float32 // xyz per vertex
	Normals    []float32 // Optional; computed from faces when nil
	Indices    []uint32  // Local to Positions
}

// Repository resolves loaded models by id.
type Repository interface {
	Model(id int) (*Model, bool)
}
