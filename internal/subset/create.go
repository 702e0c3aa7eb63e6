package subset

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/engine/material"
	"github.com/Faultbox/ifcview/internal/engine/model"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/logger"
)

// Outcome tells the caller what Create did.
type Outcome int

const (
	// OutcomeInvalid: the config was rejected; nothing changed.
	OutcomeInvalid Outcome = iota
	// OutcomeUnchanged: the ids were already selected; nothing changed.
	OutcomeUnchanged
	// OutcomeExtended: new geometry was merged onto the existing mesh.
	OutcomeExtended
	// OutcomeCreated: a new mesh was built and replaced any previous one.
	OutcomeCreated
	// OutcomeFailed: geometry could not be merged; nothing changed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeExtended:
		return "extended"
	case OutcomeCreated:
		return "created"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// action is the path decide picks for a valid request.
type action int

const (
	actionKeep action = iota
	actionExtend
	actionRebuild
)

// decide applies the precedence keep > extend > rebuild. prev is nil when
// the key has no entry yet.
func decide(cfg Config, key Key, prev *selection) action {
	if prev == nil || cfg.RemovePrevious {
		return actionRebuild
	}
	if containsAll(prev.ids, cfg.IDs) {
		return actionKeep
	}
	if !key.Default() {
		return actionExtend
	}
	return actionRebuild
}

func containsAll(set map[int]struct{}, ids []int) bool {
	for _, id := range ids {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

// Create builds, extends or keeps the subset selected by cfg. The returned
// mesh is the cached mesh for the key, or nil when nothing is cached.
func (m *Manager) Create(cfg Config) (*scene.Mesh, Outcome) {
	log := logger.Named("subset")

	if cfg.Scene == nil || cfg.IDs == nil {
		log.Debug("subset rejected: scene and ids are required", zap.Int("model", cfg.ModelID))
		return nil, OutcomeInvalid
	}
	mdl, ok := m.models.Model(cfg.ModelID)
	if !ok {
		log.Debug("subset rejected: unknown model", zap.Int("model", cfg.ModelID))
		return nil, OutcomeInvalid
	}

	key := KeyFor(cfg.ModelID, cfg.Material)
	prev := m.selected[key]

	switch decide(cfg, key, prev) {
	case actionKeep:
		return prev.mesh, OutcomeUnchanged
	case actionExtend:
		return m.extend(mdl, cfg, prev)
	default:
		return m.rebuild(mdl, cfg, key, prev)
	}
}

// extend merges the geometry of not-yet-selected ids onto the existing mesh.
// Materials are not re-partitioned: the subset renders with its override.
func (m *Manager) extend(mdl *model.Model, cfg Config, prev *selection) (*scene.Mesh, Outcome) {
	added := make(map[int]struct{})
	for _, id := range cfg.IDs {
		if _, ok := prev.ids[id]; !ok {
			added[id] = struct{}{}
		}
	}

	geoms := []*geometry.Geometry{prev.mesh.Geometry}
	for _, part := range partition(mdl, added) {
		geoms = append(geoms, part.geoms...)
	}

	merged, err := geometry.Merge(geoms, false)
	if err != nil {
		logger.Named("subset").Error("subset extend failed", zap.Int("model", cfg.ModelID), zap.Error(err))
		return prev.mesh, OutcomeFailed
	}
	m.index(merged)

	prev.mesh.Geometry = merged
	for id := range added {
		prev.ids[id] = struct{}{}
	}

	logger.Named("subset").Debug("subset extended",
		zap.Int("model", cfg.ModelID),
		zap.Int("added", len(added)),
		zap.Int("ids", len(prev.ids)),
	)
	return prev.mesh, OutcomeExtended
}

// rebuild builds a fresh mesh for the updated id set and swaps it in.
// The cache and scene change only after the geometry is built.
func (m *Manager) rebuild(mdl *model.Model, cfg Config, key Key, prev *selection) (*scene.Mesh, Outcome) {
	ids := toSet(cfg.IDs)
	if prev != nil && !cfg.RemovePrevious {
		for id := range prev.ids {
			ids[id] = struct{}{}
		}
	}

	useGroups := key.Default()
	var groups []*geometry.Geometry
	var mats []*material.Material
	for _, part := range partition(mdl, ids) {
		g := part.geoms[0]
		if len(part.geoms) > 1 {
			merged, err := geometry.Merge(part.geoms, false)
			if err != nil {
				logger.Named("subset").Error("subset material merge failed",
					zap.Int("model", cfg.ModelID),
					zap.Int("material", part.materialID),
					zap.Error(err),
				)
				return nil, OutcomeFailed
			}
			g = merged
		}
		groups = append(groups, g)
		mats = append(mats, part.material)
	}

	geom := geometry.New()
	if len(groups) > 0 {
		merged, err := geometry.Merge(groups, useGroups)
		if err != nil {
			logger.Named("subset").Error("subset merge failed", zap.Int("model", cfg.ModelID), zap.Error(err))
			return nil, OutcomeFailed
		}
		geom = merged
	}
	m.index(geom)

	if !useGroups {
		mats = []*material.Material{cfg.Material}
	}
	mesh := scene.NewMesh(geom, mats...)
	mesh.ModelID = cfg.ModelID
	mesh.Name = subsetName(key)

	if prev != nil && prev.mesh != nil {
		cfg.Scene.Remove(prev.mesh)
	}
	cfg.Scene.Add(mesh)
	m.selected[key] = &selection{ids: ids, mesh: mesh}

	logger.Named("subset").Debug("subset built",
		zap.Int("model", cfg.ModelID),
		zap.Stringer("material", key.Material),
		zap.Int("ids", len(ids)),
		zap.Int("materials", len(mats)),
		zap.Int("triangles", geom.TriangleCount()),
	)
	return mesh, OutcomeCreated
}

func (m *Manager) index(g *geometry.Geometry) {
	if m.indexer != nil {
		m.indexer.Index(g)
	}
}

func subsetName(k Key) string {
	if k.Default() {
		return "subset-default"
	}
	return "subset-" + k.Material.String()
}

// part is the selected geometry of one material.
type part struct {
	materialID int
	material   *material.Material
	geoms      []*geometry.Geometry
}

// partition groups the geometries of ids by material, in ascending material
// and element id order. Ids without geometry are dropped; materials without
// selected elements produce no part.
func partition(mdl *model.Model, ids map[int]struct{}) []part {
	var parts []part
	for _, matID := range mdl.MaterialIDs() {
		items := mdl.Items[matID]

		var elementIDs []int
		for id := range items.Geometries {
			if _, ok := ids[id]; ok {
				elementIDs = append(elementIDs, id)
			}
		}
		if len(elementIDs) == 0 {
			continue
		}
		sort.Ints(elementIDs)

		p := part{materialID: matID, material: items.Material}
		for _, id := range elementIDs {
			p.geoms = append(p.geoms, items.Geometries[id])
		}
		parts = append(parts, p)
	}
	return parts
}
