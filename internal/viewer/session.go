package viewer

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/config"
	"github.com/Faultbox/ifcview/internal/display"
	"github.com/Faultbox/ifcview/internal/engine/bvh"
	"github.com/Faultbox/ifcview/internal/engine/lighting"
	"github.com/Faultbox/ifcview/internal/engine/material"
	"github.com/Faultbox/ifcview/internal/engine/model"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/fixture"
	"github.com/Faultbox/ifcview/internal/logger"
	"github.com/Faultbox/ifcview/internal/subset"
)

// Session is the viewer state that does not touch the GPU: the scene, the
// loaded model, and what the user selected, ghosted, isolated or marked.
type Session struct {
	Scene   *scene.Scene
	Store   *model.Store
	Painter *display.Painter
	Subsets *subset.Manager

	indexer   *bvh.Builder
	highlight display.State
	ghost     display.State
	release   bool

	modelID  int
	selected map[int]struct{}
	ghosted  bool
	isolated bool

	// markMaterial renders the marked overlay subset.
	markMaterial *material.Material

	log *zap.Logger
}

// NewSession creates an empty session from the display and subset settings.
func NewSession(cfg *config.Config) *Session {
	store := model.NewStore()
	indexer := bvh.NewBuilder(cfg.Subset.BVHLeafSize)

	mark := material.New("mark", mgl32.Vec3{0.1, 0.8, 0.3})
	mark.Opacity = 0.6
	mark.Transparent = true
	mark.DoubleSided = true

	sc := scene.New()
	sc.LightDir = lighting.SunDirection(cfg.Viewer.SunAzimuth, cfg.Viewer.SunElevation)

	return &Session{
		Scene:        sc,
		Store:        store,
		Painter:      display.NewPainter(store),
		Subsets:      subset.NewManager(store, indexer),
		indexer:      indexer,
		highlight:    display.State(cfg.Display.Highlight),
		ghost:        display.State(cfg.Display.Ghost),
		release:      cfg.Display.ReleaseTwinOnReset,
		selected:     make(map[int]struct{}),
		markMaterial: mark,
		log:          logger.Named("viewer"),
	}
}

// Load builds the building's model, indexes it for picking and adds its
// mesh to the scene. The loaded model becomes the session's active model.
func (s *Session) Load(b *fixture.Building) (*model.Model, error) {
	m, err := b.Model()
	if err != nil {
		return nil, err
	}
	return m, s.add(b.Name, m)
}

// Replace swaps the active model for b's. The current model stays loaded
// when b cannot be built or added.
func (s *Session) Replace(b *fixture.Building) (*model.Model, error) {
	m, err := b.Model()
	if err != nil {
		return nil, err
	}
	if cur, ok := s.Model(); ok && cur.ID != m.ID {
		if _, taken := s.Store.Model(m.ID); taken {
			return nil, fmt.Errorf("loading %q: model %d already loaded", b.Name, m.ID)
		}
	}
	s.Unload()
	return m, s.add(b.Name, m)
}

func (s *Session) add(name string, m *model.Model) error {
	if err := s.Store.Add(m); err != nil {
		return fmt.Errorf("loading %q: %w", name, err)
	}
	s.indexer.Index(m.Mesh.Geometry)
	s.Scene.Add(m.Mesh)
	s.modelID = m.ID

	s.log.Info("model loaded",
		zap.String("name", name),
		zap.Int("model", m.ID),
		zap.Int("elements", len(m.Faces)),
		zap.Int("materials", len(m.Items)),
		zap.Int("triangles", m.Mesh.Geometry.TriangleCount()),
	)
	return nil
}

// Unload removes the active model: its subsets, its meshes and its store
// entry. Selection, ghost and isolation state are cleared.
func (s *Session) Unload() {
	m, ok := s.Model()
	if !ok {
		return
	}
	s.Subsets.RemoveModel(m.ID, s.Scene)
	s.Painter.ReleaseTwin(m.ID, s.Scene)
	s.Scene.Remove(m.Mesh)
	s.Store.Remove(m.ID)

	s.selected = make(map[int]struct{})
	s.ghosted = false
	s.isolated = false
	s.log.Info("model unloaded", zap.Int("model", m.ID))
}

// Model returns the active model.
func (s *Session) Model() (*model.Model, bool) {
	return s.Store.Model(s.modelID)
}

// Pick returns the element of the active model hit first by r. While
// isolated only the isolated elements can be picked.
func (s *Session) Pick(r bvh.Ray) (int, bool) {
	m, ok := s.Model()
	if !ok {
		return 0, false
	}
	tree, ok := bvh.TreeOf(m.Mesh.Geometry)
	if !ok {
		return 0, false
	}

	var accept func(face int) bool
	if s.isolated {
		isolated := toSet(s.Subsets.IDs(m.ID, nil))
		accept = func(face int) bool {
			id, ok := m.ElementAt(face)
			if !ok {
				return false
			}
			_, in := isolated[id]
			return in
		}
	}

	hit, ok := tree.RaycastFunc(r, accept)
	if !ok {
		return 0, false
	}
	return m.ElementAt(hit.Face)
}

// Select highlights id. Without additive the previous selection is cleared
// first; with additive an already selected id is deselected.
func (s *Session) Select(id int, additive bool) {
	if !additive {
		s.ClearSelection()
	} else if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		s.Painter.Paint(s.modelID, []int{id}, s.restState(), s.Scene)
		return
	}
	s.selected[id] = struct{}{}
	s.Painter.Paint(s.modelID, []int{id}, s.highlight, s.Scene)
}

// ClearSelection returns every selected element to its rest state.
func (s *Session) ClearSelection() {
	if len(s.selected) == 0 {
		return
	}
	s.Painter.Paint(s.modelID, s.Selected(), s.restState(), s.Scene)
	s.selected = make(map[int]struct{})
}

// Selected returns the selected element ids in ascending order.
func (s *Session) Selected() []int {
	return sortedIDs(s.selected)
}

// restState is what unselected elements look like.
func (s *Session) restState() display.State {
	if s.ghosted {
		return s.ghost
	}
	return display.Opaque
}

// SetGhost paints every unselected element with the ghost state, or returns
// them to opaque.
func (s *Session) SetGhost(on bool) {
	if on == s.ghosted {
		return
	}
	m, ok := s.Model()
	if !ok {
		return
	}
	s.ghosted = on

	var rest []int
	for _, id := range m.ElementIDs() {
		if _, sel := s.selected[id]; !sel {
			rest = append(rest, id)
		}
	}
	res := s.Painter.Paint(m.ID, rest, s.restState(), s.Scene)
	if !on && s.release {
		s.Painter.ReleaseTwin(m.ID, s.Scene)
	}
	s.log.Debug("ghost toggled", zap.Bool("on", on), zap.Int("faces", res.Faces), zap.Bool("twin_created", res.TwinCreated))
}

// Ghosted reports whether unselected elements are ghosted.
func (s *Session) Ghosted() bool {
	return s.ghosted
}

// Isolate shows only the selected elements, as a subset of the model split
// by material. It reports false when nothing is selected.
func (s *Session) Isolate() bool {
	m, ok := s.Model()
	if !ok || len(s.selected) == 0 {
		return false
	}

	mesh, outcome := s.Subsets.Create(subset.Config{
		Scene:          s.Scene,
		ModelID:        m.ID,
		IDs:            s.Selected(),
		RemovePrevious: true,
	})
	if outcome != subset.OutcomeCreated {
		s.log.Warn("isolation failed", zap.Stringer("outcome", outcome))
		return false
	}

	s.setModelVisible(m, false)
	s.isolated = true
	s.log.Debug("isolated", zap.Int("elements", len(s.selected)), zap.Int("triangles", mesh.Geometry.TriangleCount()))
	return true
}

// ShowAll ends isolation.
func (s *Session) ShowAll() {
	m, ok := s.Model()
	if !ok || !s.isolated {
		return
	}
	s.Subsets.Remove(m.ID, s.Scene, nil)
	s.setModelVisible(m, true)
	s.isolated = false
}

// Isolated reports whether the model is isolated.
func (s *Session) Isolated() bool {
	return s.isolated
}

func (s *Session) setModelVisible(m *model.Model, visible bool) {
	m.Mesh.Visible = visible
	if m.Mesh.Transparent != nil {
		m.Mesh.Transparent.Visible = visible
	}
}

// Mark adds the selected elements to the marked overlay. The overlay keeps
// growing until Unmark.
func (s *Session) Mark() subset.Outcome {
	if len(s.selected) == 0 {
		return subset.OutcomeInvalid
	}
	_, outcome := s.Subsets.Create(subset.Config{
		Scene:    s.Scene,
		ModelID:  s.modelID,
		IDs:      s.Selected(),
		Material: s.markMaterial,
	})
	return outcome
}

// Marked returns the marked element ids.
func (s *Session) Marked() []int {
	return s.Subsets.IDs(s.modelID, s.markMaterial)
}

// Unmark removes the marked overlay.
func (s *Session) Unmark() bool {
	return s.Subsets.Remove(s.modelID, s.Scene, s.markMaterial)
}

// Reset returns the session to a freshly loaded model: every element opaque,
// no selection, no subsets.
func (s *Session) Reset() {
	m, ok := s.Model()
	if !ok {
		return
	}
	s.Painter.Reset(m.ID, m.ElementIDs())
	if s.release {
		s.Painter.ReleaseTwin(m.ID, s.Scene)
	}
	s.Subsets.RemoveModel(m.ID, s.Scene)
	s.setModelVisible(m, true)

	s.selected = make(map[int]struct{})
	s.ghosted = false
	s.isolated = false
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
