package model

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/engine/material"
	"github.com/Faultbox/ifcview/internal/engine/scene"
)

// Build merges elements into a model. Elements are laid out material by
// material (ascending material id, then ascending element id) so that each
// material is one contiguous draw group of the merged mesh.
func Build(id int, elements []Element, materials map[int]*material.Material) (*Model, error) {
	m := &Model{
		ID:    id,
		Faces: make(map[int][]int),
		Items: make(map[int]*MaterialItems),
	}

	byMaterial := make(map[int][]*Element)
	seen := make(map[int]bool, len(elements))
	for i := range elements {
		el := &elements[i]
		if seen[el.ID] {
			return nil, fmt.Errorf("element %d: duplicate id", el.ID)
		}
		seen[el.ID] = true
		if _, ok := materials[el.MaterialID]; !ok {
			return nil, fmt.Errorf("element %d: unknown material %d", el.ID, el.MaterialID)
		}
		if err := validate(el); err != nil {
			return nil, fmt.Errorf("element %d: %w", el.ID, err)
		}
		byMaterial[el.MaterialID] = append(byMaterial[el.MaterialID], el)
	}

	matIDs := make([]int, 0, len(byMaterial))
	for matID := range byMaterial {
		matIDs = append(matIDs, matID)
	}
	sort.Ints(matIDs)

	var positions, normals []float32
	var indices []uint32
	merged := geometry.New()
	mats := make([]*material.Material, 0, len(matIDs))

	for groupIdx, matID := range matIDs {
		els := byMaterial[matID]
		sort.Slice(els, func(i, j int) bool { return els[i].ID < els[j].ID })

		items := &MaterialItems{
			Material:   materials[matID],
			Geometries: make(map[int]*geometry.Geometry, len(els)),
		}
		m.Items[matID] = items
		mats = append(mats, materials[matID])

		groupStart := len(indices)
		for _, el := range els {
			elNormals := el.Normals
			if elNormals == nil {
				elNormals = VertexNormals(el.Positions, el.Indices)
			}

			base := uint32(len(positions) / 3)
			firstFace := len(indices) / 3
			positions = append(positions, el.Positions...)
			normals = append(normals, elNormals...)
			for _, idx := range el.Indices {
				indices = append(indices, base+idx)
			}

			faces := make([]int, len(el.Indices)/3)
			for f := range faces {
				faces[f] = firstFace + f
			}
			m.Faces[el.ID] = faces

			items.Geometries[el.ID] = geometry.NewIndexed(
				append([]float32(nil), el.Positions...),
				append([]float32(nil), elNormals...),
				append([]uint32(nil), el.Indices...),
			)
		}
		merged.AddGroup(groupStart, len(indices)-groupStart, groupIdx)
	}

	merged.SetAttribute(geometry.AttrPosition, geometry.NewAttribute(positions, 3))
	merged.SetAttribute(geometry.AttrNormal, geometry.NewAttribute(normals, 3))
	merged.Index = indices
	if merged.Index == nil {
		merged.Index = []uint32{}
	}

	m.Mesh = scene.NewMesh(merged, mats...)
	m.Mesh.Name = fmt.Sprintf("model-%d", id)
	m.Mesh.ModelID = id
	return m, nil
}

func validate(el *Element) error {
	if len(el.Positions)%3 != 0 {
		return fmt.Errorf("positions length %d is not a multiple of 3", len(el.Positions))
	}
	if len(el.Indices)%3 != 0 {
		return fmt.Errorf("index length %d is not a multiple of 3", len(el.Indices))
	}
	if el.Normals != nil && len(el.Normals) != len(el.Positions) {
		return fmt.Errorf("normals length %d does not match positions length %d", len(el.Normals), len(el.Positions))
	}
	n := uint32(len(el.Positions) / 3)
	for _, idx := range el.Indices {
		if idx >= n {
			return fmt.Errorf("index %d out of range for %d vertices", idx, n)
		}
	}
	return nil
}

// VertexNormals averages area-weighted face normals onto vertices.
func VertexNormals(positions []float32, indices []uint32) []float32 {
	normals := make([]float32, len(positions))
	at := func(i uint32) mgl32.Vec3 {
		return mgl32.Vec3{positions[3*i], positions[3*i+1], positions[3*i+2]}
	}

	for f := 0; f+2 < len(indices); f += 3 {
		ia, ib, ic := indices[f], indices[f+1], indices[f+2]
		a := at(ia)
		n := at(ib).Sub(a).Cross(at(ic).Sub(a))
		for _, i := range []uint32{ia, ib, ic} {
			normals[3*i] += n[0]
			normals[3*i+1] += n[1]
			normals[3*i+2] += n[2]
		}
	}

	for i := 0; i+2 < len(normals); i += 3 {
		v := mgl32.Vec3{normals[i], normals[i+1], normals[i+2]}
		if l := v.Len(); l > 1e-8 {
			v = v.Mul(1 / l)
		}
		normals[i], normals[i+1], normals[i+2] = v[0], v[1], v[2]
	}
	return normals
}
