package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/geometry"
	"github.com/inkboard/inkboard/internal/history"
	"github.com/inkboard/inkboard/internal/render"
	"github.com/inkboard/inkboard/internal/scene"
	"github.com/inkboard/inkboard/internal/typeid"
)

var ErrUnknownTool = errors.New("unknown tool")

type Tool string

const (
	ToolSelect    Tool = "select"
	ToolHand      Tool = "hand"
	ToolPen       Tool = "pen"
	ToolLine      Tool = "line"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolArrow     Tool = "arrow"
	ToolText      Tool = "text"
)

func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolHand, ToolPen, ToolLine, ToolRectangle, ToolCircle, ToolArrow, ToolText:
		return true
	}
	return false
}

// shapeType maps a drawing tool to the shape it creates.
func (t Tool) shapeType() (document.ShapeType, bool) {
	switch t {
	case ToolRectangle:
		return document.ShapeRectangle, true
	case ToolCircle:
		return document.ShapeCircle, true
	case ToolArrow:
		return document.ShapeArrow, true
	case ToolLine:
		return document.ShapeLine, true
	}
	return "", false
}

const (
	DefaultStrokeColor = "#000000"
	DarkStrokeColor    = "#ffffff"
	DefaultStrokeWidth = 2.0

	// FitPadding is the screen margin kept by FitToScreen.
	FitPadding = 20.0
)

// Settings is the drawing-tool state applied to new elements.
type Settings struct {
	Tool        Tool         `json:"tool"`
	StrokeColor string       `json:"strokeColor"`
	StrokeWidth float64      `json:"strokeWidth"`
	FillColor   string       `json:"fillColor"`
	Opacity     float64      `json:"opacity"`
	ShowGrid    bool         `json:"showGrid"`
	Theme       render.Theme `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{
		Tool:        ToolPen,
		StrokeColor: DefaultStrokeColor,
		StrokeWidth: DefaultStrokeWidth,
		FillColor:   document.Transparent,
		Opacity:     1,
		ShowGrid:    true,
		Theme:       render.ThemeLight,
	}
}

// ConfirmFunc asks the host to confirm deleting n selected elements. It is
// called without the engine lock held.
type ConfirmFunc func(n int) bool

// Engine is one canvas instance. It owns the scene, its history, the
// viewport, the tool settings and the active gesture. All exported methods
// are safe for concurrent use; mutations and frames are serialized.
type Engine struct {
	mu sync.Mutex

	store    *scene.Store
	history  *history.Log
	viewport geometry.Viewport
	settings Settings

	screenW, screenH float64

	gesture  gesture
	textEdit *TextEdit

	confirm  ConfirmFunc
	onCommit CommitFunc
	pending  []Change
	newID    func(prefix string) string
	now      func() time.Time
}

type Option func(*Engine)

// WithConfirm installs the delete confirmation callback. Without one,
// deletes proceed unconfirmed.
func WithConfirm(fn ConfirmFunc) Option {
	return func(e *Engine) { e.confirm = fn }
}

// WithIDGenerator replaces typeid-based element ids.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(e *Engine) { e.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.now = fn }
}

func WithHistoryCapacity(n int) Option {
	return func(e *Engine) { e.history = history.NewLog(n) }
}

// NewEngine creates an empty canvas. The initial empty scene is the first
// history entry, so the first edit can be undone.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		store:    scene.NewStore(),
		history:  history.NewLog(history.DefaultCapacity),
		viewport: geometry.DefaultViewport(),
		settings: DefaultSettings(),
		newID:    typeid.New,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.history.Reset(e.store.Snapshot())
	return e
}

// commitLocked records the current scene as one undo step.
func (e *Engine) commitLocked() {
	e.history.Commit(e.store.Snapshot())
}

// --- Tool settings ---

func (e *Engine) SetTool(t Tool) error {
	if !t.Valid() {
		return fmt.Errorf("set tool %q: %w", t, ErrUnknownTool)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.settings.Tool != t {
		e.cancelLocked()
		e.settings.Tool = t
	}
	return nil
}

func (e *Engine) SetStrokeColor(c string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.StrokeColor = c
}

func (e *Engine) SetStrokeWidth(w float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if w > 0 {
		e.settings.StrokeWidth = w
	}
}

func (e *Engine) SetFillColor(c string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c == "" {
		c = document.Transparent
	}
	e.settings.FillColor = c
}

// SetOpacity clamps o to (0, 1].
func (e *Engine) SetOpacity(o float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.Opacity = max(min(o, 1), 0.01)
}

func (e *Engine) SetShowGrid(show bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.ShowGrid = show
}

// SetTheme switches themes, swapping the stroke colour when it is still the
// previous theme's default.
func (e *Engine) SetTheme(t render.Theme) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case t == render.ThemeDark && e.settings.StrokeColor == DefaultStrokeColor:
		e.settings.StrokeColor = DarkStrokeColor
	case t != render.ThemeDark && e.settings.StrokeColor == DarkStrokeColor:
		e.settings.StrokeColor = DefaultStrokeColor
	}
	if t != render.ThemeDark {
		t = render.ThemeLight
	}
	e.settings.Theme = t
}

func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// SetScreenSize records the host canvas size in pixels.
func (e *Engine) SetScreenSize(w, h float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.screenW, e.screenH = max(w, 0), max(h, 0)
}

// --- History ---

// Undo restores the previous snapshot and clears the selection. It reports
// false when there is nothing to undo.
func (e *Engine) Undo() bool {
	e.mu.Lock()
	defer e.unlock()
	e.cancelLocked()
	sc, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.store.Restore(sc)
	e.recordLocked(sceneReplaceChange(sc))
	return true
}

func (e *Engine) Redo() bool {
	e.mu.Lock()
	defer e.unlock()
	e.cancelLocked()
	sc, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.store.Restore(sc)
	e.recordLocked(sceneReplaceChange(sc))
	return true
}

func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

// HistoryLen returns the number of retained snapshots.
func (e *Engine) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Len()
}

// --- Selection and deletion ---

func (e *Engine) SetSelection(ids []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.SetSelection(ids)
}

func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.ClearSelection()
}

func (e *Engine) Selection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Selection()
}

// DeleteSelected removes the selection as one undo step and returns the
// number of elements removed.
func (e *Engine) DeleteSelected() int {
	e.mu.Lock()
	defer e.unlock()
	e.settleLocked()
	ids := e.store.Selection()
	n := e.store.DeleteSelected()
	if n > 0 {
		e.recordLocked(Change{Type: ChangeElementsDelete, IDs: ids})
		e.commitLocked()
	}
	return n
}

// ClearCanvas removes every element.
func (e *Engine) ClearCanvas() {
	e.mu.Lock()
	defer e.unlock()
	e.settleLocked()
	if e.store.Len() == 0 {
		e.store.ClearSelection()
		return
	}
	e.store.Clear()
	e.recordLocked(Change{Type: ChangeSceneClear})
	e.commitLocked()
}

// --- Replay: the same primitives serve local tools and remote feeds ---
// An open drag or resize is committed first so each edit lands on top of
// it in history.

func (e *Engine) AddPath(p document.Path) error {
	e.mu.Lock()
	defer e.unlock()
	e.settleLocked()
	if err := e.store.AddPath(p); err != nil {
		return err
	}
	e.commitLocked()
	return nil
}

func (e *Engine) AddShape(s document.Shape) error {
	e.mu.Lock()
	defer e.unlock()
	e.settleLocked()
	if err := e.store.AddShape(s); err != nil {
		return err
	}
	e.commitLocked()
	return nil
}

// UpdateShape merges patch into a shape as one undo step. Unknown ids are
// reported and leave the scene unchanged.
func (e *Engine) UpdateShape(id string, patch document.ShapePatch) error {
	e.mu.Lock()
	defer e.unlock()
	e.settleLocked()
	if err := e.store.UpdateShape(id, patch); err != nil {
		slog.Debug("update shape", "id", id, "error", err)
		return err
	}
	e.commitLocked()
	return nil
}

func (e *Engine) DeleteElements(ids []string) int {
	e.mu.Lock()
	defer e.unlock()
	e.settleLocked()
	n := e.store.DeleteElements(ids)
	if n > 0 {
		e.commitLocked()
	}
	return n
}

// Scene returns a copy of the committed elements.
func (e *Engine) Scene() document.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Snapshot()
}

// --- Viewport ---

func (e *Engine) Viewport() geometry.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

func (e *Engine) SetViewport(v geometry.Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = v.Normalize()
}

func (e *Engine) ZoomIn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = e.viewport.ZoomIn()
}

func (e *Engine) ZoomOut() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = e.viewport.ZoomOut()
}

func (e *Engine) ResetZoom() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = geometry.DefaultViewport()
}

// FitToScreen frames every element in the screen. An empty scene or an
// unknown screen size resets to the identity viewport.
func (e *Engine) FitToScreen() {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := geometry.BoundsOf(e.store.Paths(), e.store.Shapes())
	e.viewport = geometry.Fit(b, e.screenW, e.screenH, FitPadding)
}

// --- Serialization ---

// ExportJSON serializes the committed scene.
func (e *Engine) ExportJSON() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return document.Encode(e.store.Snapshot(), e.now())
}

// ImportJSON replaces the scene with a decoded blob as one undo step. On a
// validation error nothing changes.
func (e *Engine) ImportJSON(data []byte) error {
	sc, err := document.Decode(data)
	if err != nil {
		return fmt.Errorf("import scene: %w", err)
	}
	e.mu.Lock()
	defer e.unlock()
	e.settleLocked()
	e.store.Restore(sc)
	e.recordLocked(sceneReplaceChange(sc))
	e.commitLocked()
	return nil
}

// LoadScene replaces the scene and restarts history from it, for opening a
// saved board rather than importing into the current one.
func (e *Engine) LoadScene(sc document.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
	e.store.Restore(sc)
	e.history.Reset(e.store.Snapshot())
}

// --- Rendering ---

// Frame renders the committed scene plus the active gesture preview.
func (e *Engine) Frame() []render.DrawCommand {
	e.mu.Lock()
	in := render.Input{
		Scene:     e.store.Snapshot(),
		Selection: e.store.Selection(),
		Viewport:  e.viewport,
		Width:     e.screenW,
		Height:    e.screenH,
		ShowGrid:  e.settings.ShowGrid,
		Theme:     e.settings.Theme,
		Preview:   e.gesture.preview(),
	}
	e.mu.Unlock()
	return render.Frame(in)
}

// RenderJSON renders a frame as JSON for the browser bridge.
func (e *Engine) RenderJSON() string {
	result, err := render.DrawCommandsToJSON(e.Frame())
	if err != nil {
		slog.Error("marshal draw commands", "error", err)
	}
	return result
}

// State is a serializable summary for host UIs.
type State struct {
	Settings
	Viewport  geometry.Viewport `json:"viewport"`
	Selection []string          `json:"selection"`
	CanUndo   bool              `json:"canUndo"`
	CanRedo   bool              `json:"canRedo"`
	Gesture   string            `json:"gesture"`
	Editing   *TextEdit         `json:"editing,omitempty"`
	Elements  int               `json:"elements"`
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := State{
		Settings:  e.settings,
		Viewport:  e.viewport,
		Selection: e.store.Selection(),
		CanUndo:   e.history.CanUndo(),
		CanRedo:   e.history.CanRedo(),
		Gesture:   e.gesture.kind.String(),
		Elements:  e.store.Len(),
	}
	if e.textEdit != nil {
		te := *e.textEdit
		st.Editing = &te
	}
	return st
}
