// Package viewer implements the interactive building viewer: the main loop,
// camera control and the selection tools.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/config"
	"github.com/Faultbox/ifcview/internal/engine/bvh"
	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/internal/engine/input"
	"github.com/Faultbox/ifcview/internal/engine/renderer"
	"github.com/Faultbox/ifcview/internal/engine/screenshot"
	"github.com/Faultbox/ifcview/internal/engine/window"
	"github.com/Faultbox/ifcview/internal/fixture"
	"github.com/Faultbox/ifcview/internal/watcher"
)

// clickSlop is how far (in screen points) the mouse may travel between
// press and release for the gesture to count as a click rather than a drag.
const clickSlop = 4

// Viewer is the main viewer instance.
type Viewer struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	session  *Session
	shots    *screenshot.Capture
	watcher  *watcher.FileWatcher
	reload   chan string // fixture paths changed on disk

	pressX, pressY int
	dragging       bool
	pendingShot    bool // capture after the next draw
}

// New opens the window, loads the configured building and frames it.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		config:  cfg,
		camera:  camera.NewOrbitCamera(),
		session: NewSession(cfg),
		input:   input.New(),
		shots:   screenshot.New(cfg.Viewer.ScreenshotDir, "ifcview"),
		reload:  make(chan string, 1),
	}

	building, err := loadBuilding(cfg.Viewer.Model)
	if err != nil {
		return nil, err
	}
	m, err := v.session.Load(building)
	if err != nil {
		return nil, err
	}
	v.camera.FitToBounds(m.Mesh.Geometry.BoundingBox())

	// Window first: the renderer needs its OpenGL context.
	v.window, err = window.New(window.Config{
		Title:      cfg.Viewer.Title,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w, h := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{Width: w, Height: h})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if cfg.Viewer.Watch && cfg.Viewer.Model != "" {
		if err := v.watch(cfg.Viewer.Model); err != nil {
			v.session.log.Warn("fixture watch disabled", zap.Error(err))
		}
	}

	v.updateTitle()
	return v, nil
}

// watch queues path for reload whenever it changes.
func (v *Viewer) watch(path string) error {
	fw, err := watcher.NewFileWatcher(300 * time.Millisecond)
	if err != nil {
		return err
	}
	err = fw.Watch([]string{path}, func(changed string) {
		select {
		case v.reload <- changed:
		default:
		}
	})
	if err != nil {
		fw.Close()
		return err
	}
	fw.Start()
	v.watcher = fw
	v.session.log.Info("watching fixture", zap.String("path", path))
	return nil
}

// reloadModel replaces the active model with a fresh load of path. A fixture
// that fails to parse or build leaves the current model in place.
func (v *Viewer) reloadModel(path string) {
	building, err := fixture.Load(path)
	if err != nil {
		v.session.log.Error("reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	if _, err := v.session.Replace(building); err != nil {
		v.session.log.Error("reload failed", zap.String("path", path), zap.Error(err))
	}
	v.updateTitle()
}

func loadBuilding(path string) (*fixture.Building, error) {
	if path == "" {
		return fixture.Generate(1, 4, 3), nil
	}
	return fixture.Load(path)
}

// Run starts the main loop. It returns when the window is closed.
func (v *Viewer) Run() error {
	log := v.session.log
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	log.Info("starting main loop")
	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		for _, ev := range v.input.Events() {
			v.handle(ev)
		}
		select {
		case path := <-v.reload:
			v.reloadModel(path)
		default:
		}
		v.move(dt)

		w, h := v.window.DrawableSize()
		v.renderer.Draw(v.session.Scene, v.camera.ViewProjection(w, h))
		if v.pendingShot {
			v.capture()
			v.pendingShot = false
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			stats := v.renderer.Stats()
			log.Debug("frame stats",
				zap.Int("fps", frameCount),
				zap.Int("draw_calls", stats.DrawCalls),
				zap.Int("uploads", stats.Uploads),
				zap.Int("uploaded_bytes", stats.UploadedBytes),
				zap.Int("geometries", stats.Geometries),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

// Close releases GPU and window resources.
func (v *Viewer) Close() {
	v.session.log.Info("closing viewer")
	if v.watcher != nil {
		v.watcher.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func (v *Viewer) handle(ev input.Event) {
	switch ev.Type {
	case input.EventWindowResize:
		w, h := v.window.DrawableSize()
		v.renderer.Resize(w, h)

	case input.EventMouseDown:
		if ev.Button == sdl.BUTTON_LEFT {
			v.pressX, v.pressY = ev.MouseX, ev.MouseY
			v.dragging = false
		}

	case input.EventMouseMove:
		if v.input.ButtonHeld(sdl.BUTTON_LEFT) {
			if abs(ev.MouseX-v.pressX) > clickSlop || abs(ev.MouseY-v.pressY) > clickSlop {
				v.dragging = true
			}
			if v.dragging {
				v.camera.HandleDrag(float32(ev.DeltaX), float32(ev.DeltaY))
			}
		}

	case input.EventMouseUp:
		if ev.Button == sdl.BUTTON_LEFT && !v.dragging {
			v.click(ev.MouseX, ev.MouseY, v.input.KeyHeld(sdl.SCANCODE_LSHIFT) || v.input.KeyHeld(sdl.SCANCODE_RSHIFT))
		}
		v.dragging = false

	case input.EventMouseWheel:
		v.camera.HandleZoom(float32(ev.DeltaY))

	case input.EventKeyDown:
		v.key(ev)
	}
}

// click picks the element under the cursor and selects it.
func (v *Viewer) click(x, y int, additive bool) {
	w, h := v.window.Size()
	inv := v.camera.ViewProjection(w, h).Inv()
	ray := bvh.ScreenToRay(float32(x), float32(y), float32(w), float32(h), inv)

	id, ok := v.session.Pick(ray)
	if !ok {
		if !additive {
			v.session.ClearSelection()
		}
		v.updateTitle()
		return
	}
	v.session.Select(id, additive)
	v.session.log.Debug("picked", zap.Int("element", id), zap.Bool("additive", additive))
	v.updateTitle()
}

func (v *Viewer) key(ev input.Event) {
	switch ev.Key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_G:
		v.session.SetGhost(!v.session.Ghosted())
	case sdl.SCANCODE_I:
		if v.session.Isolated() {
			v.session.ShowAll()
		} else {
			v.session.Isolate()
		}
	case sdl.SCANCODE_M:
		if ev.Shift {
			v.session.Unmark()
		} else {
			v.session.Mark()
		}
	case sdl.SCANCODE_C:
		v.session.ClearSelection()
	case sdl.SCANCODE_R:
		v.session.Reset()
	case sdl.SCANCODE_F:
		if m, ok := v.session.Model(); ok {
			v.camera.FitToBounds(m.Mesh.Geometry.BoundingBox())
		}
	case sdl.SCANCODE_P:
		v.pendingShot = true
	}
	v.updateTitle()
}

// capture saves the back buffer. Call it between Draw and SwapBuffers.
func (v *Viewer) capture() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.shots.Save(pixels, w, h)
	if err != nil {
		v.session.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.session.log.Info("screenshot saved", zap.String("path", path))
}

// move pans the camera from held WASD/QE keys.
func (v *Viewer) move(dt float32) {
	forward := v.input.Axis(sdl.SCANCODE_S, sdl.SCANCODE_W)
	right := v.input.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D)
	up := v.input.Axis(sdl.SCANCODE_Q, sdl.SCANCODE_E)
	if forward == 0 && right == 0 && up == 0 {
		return
	}
	scale := dt * 60
	v.camera.HandleMovement(forward*scale, right*scale, up*scale)
}

func (v *Viewer) updateTitle() {
	s := v.session
	title := fmt.Sprintf("%s - %d selected", v.config.Viewer.Title, len(s.selected))
	if s.ghosted {
		title += " [ghost]"
	}
	if s.isolated {
		title += " [isolated]"
	}
	if n := len(s.Marked()); n > 0 {
		title += fmt.Sprintf(" [%d marked]", n)
	}
	v.window.SetTitle(title)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
