// Package subset carves selections of model elements out into standalone
// meshes, cached per (material, model).
package subset

import (
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/engine/material"
	"github.com/Faultbox/ifcview/internal/engine/model"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/logger"
)

// Indexer accelerates spatial queries on a freshly built subset geometry.
type Indexer interface {
	Index(g *geometry.Geometry)
}

// Key identifies a selection. A nil Material is the model's default
// selection.
type Key struct {
	Material uuid.UUID
	ModelID  int
}

// KeyFor returns the cache key for a model and optional material override.
func KeyFor(modelID int, mat *material.Material) Key {
	k := Key{ModelID: modelID}
	if mat != nil {
		k.Material = mat.ID
	}
	return k
}

// Default reports whether k is a model's default selection.
func (k Key) Default() bool {
	return k.Material == uuid.Nil
}

type selection struct {
	ids  map[int]struct{}
	mesh *scene.Mesh
}

// Config describes a Create request.
type Config struct {
	Scene          scene.Container
	ModelID        int
	IDs            []int
	RemovePrevious bool
	// Material overrides the model's materials for the whole subset and
	// selects a separate cache entry.
	Material *material.Material
}

// Manager caches one subset mesh per Key.
type Manager struct {
	models   model.Repository
	indexer  Indexer
	selected map[Key]*selection
}

// NewManager creates a manager over models. indexer may be nil.
func NewManager(models model.Repository, indexer Indexer) *Manager {
	return &Manager{
		models:   models,
		indexer:  indexer,
		selected: make(map[Key]*selection),
	}
}

// Get returns the cached subset mesh.
func (m *Manager) Get(modelID int, mat *material.Material) (*scene.Mesh, bool) {
	sel, ok := m.selected[KeyFor(modelID, mat)]
	if !ok {
		return nil, false
	}
	return sel.mesh, true
}

// IDs returns the selected element ids in ascending order.
func (m *Manager) IDs(modelID int, mat *material.Material) []int {
	sel, ok := m.selected[KeyFor(modelID, mat)]
	if !ok {
		return nil
	}
	return sortedIDs(sel.ids)
}

// Len returns the number of cached subsets.
func (m *Manager) Len() int {
	return len(m.selected)
}

// Remove drops the cached subset, detaching its mesh from parent when parent
// is not nil. It reports whether an entry existed.
func (m *Manager) Remove(modelID int, parent scene.Container, mat *material.Material) bool {
	key := KeyFor(modelID, mat)
	sel, ok := m.selected[key]
	if !ok {
		return false
	}
	if parent != nil {
		parent.Remove(sel.mesh)
	}
	delete(m.selected, key)
	logger.Named("subset").Debug("subset removed", zap.Int("model", modelID), zap.Stringer("material", key.Material))
	return true
}

// RemoveModel drops every subset of a model and returns how many there were.
func (m *Manager) RemoveModel(modelID int, parent scene.Container) int {
	n := 0
	for key, sel := range m.selected {
		if key.ModelID != modelID {
			continue
		}
		if parent != nil {
			parent.Remove(sel.mesh)
		}
		delete(m.selected, key)
		n++
	}
	return n
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func toSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
