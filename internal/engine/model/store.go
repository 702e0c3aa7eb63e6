package model

import (
	"fmt"
	"sort"
)

// Store is an in-memory Repository.
type Store struct {
	models map[int]*Model
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{models: make(map[int]*Model)}
}

// Add registers m. Ids must be unique.
func (s *Store) Add(m *Model) error {
	if _, ok := s.models[m.ID]; ok {
		return fmt.Errorf("model %d already loaded", m.ID)
	}
	s.models[m.ID] = m
	return nil
}

// Model returns the model with the given id.
func (s *Store) Model(id int) (*Model, bool) {
	m, ok := s.models[id]
	return m, ok
}

// Remove forgets a model and returns it.
func (s *Store) Remove(id int) (*Model, bool) {
	m, ok := s.models[id]
	delete(s.models, id)
	return m, ok
}

// IDs returns loaded model ids in ascending order.
func (s *Store) IDs() []int {
	ids := make([]int, 0, len(s.models))
	for id := range s.models {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ElementIDs returns the element ids of m in ascending order.
func (m *Model) ElementIDs() []int {
	ids := make([]int, 0, len(m.Faces))
	for id := range m.Faces {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// MaterialIDs returns the material ids of m in ascending order.
func (m *Model) MaterialIDs() []int {
	ids := make([]int, 0, len(m.Items))
	for id := range m.Items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ElementAt returns the element owning triangle face of Mesh.
func (m *Model) ElementAt(face int) (int, bool) {
	if m.owners == nil {
		n := 0
		if m.Mesh != nil && m.Mesh.Geometry != nil {
			n = m.Mesh.Geometry.TriangleCount()
		}
		m.owners = make([]int, n)
		for i := range m.owners {
			m.owners[i] = -1
		}
		for id, faces := range m.Faces {
			for _, f := range faces {
				if f >= 0 && f < n {
					m.owners[f] = id
				}
			}
		}
	}
	if face < 0 || face >= len(m.owners) || m.owners[face] < 0 {
		return 0, false
	}
	return m.owners[face], true
}
