// Package scene holds the mutable set of committed elements and the current
// selection. The store is not safe for concurrent use; its owner serializes
// access.
package scene

import (
	"errors"
	"fmt"

	"github.com/inkboard/inkboard/internal/document"
)

var (
	ErrDuplicateID = errors.New("duplicate element id")
	ErrNotFound    = errors.New("element not found")
	ErrDegenerate  = errors.New("degenerate element")
	ErrInvalid     = errors.New("invalid element")
)

// MinPathCoords is the fewest flattened coordinates a committed path may have.
const MinPathCoords = 4

type Store struct {
	paths     []document.Path
	shapes    []document.Shape
	selection []string
}

func NewStore() *Store {
	return &Store{
		paths:  []document.Path{},
		shapes: []document.Shape{},
	}
}

// AddPath appends a committed stroke.
func (s *Store) AddPath(p document.Path) error {
	if p.ID == "" {
		return fmt.Errorf("add path: %w: missing id", ErrInvalid)
	}
	if len(p.Points)%2 != 0 {
		return fmt.Errorf("add path %s: %w: odd number of coordinates", p.ID, ErrInvalid)
	}
	if len(p.Points) < MinPathCoords {
		return fmt.Errorf("add path %s: %w", p.ID, ErrDegenerate)
	}
	if s.has(p.ID) {
		return fmt.Errorf("add path %s: %w", p.ID, ErrDuplicateID)
	}
	s.paths = append(s.paths, p.Clone())
	return nil
}

// AddShape appends a shape after restoring its derived fields.
func (s *Store) AddShape(sh document.Shape) error {
	if sh.ID == "" {
		return fmt.Errorf("add shape: %w: missing id", ErrInvalid)
	}
	if !sh.Type.Valid() {
		return fmt.Errorf("add shape %s: %w: unknown type %q", sh.ID, ErrInvalid, sh.Type)
	}
	if s.has(sh.ID) {
		return fmt.Errorf("add shape %s: %w", sh.ID, ErrDuplicateID)
	}
	sh = sh.Clone()
	sh.Normalize()
	s.shapes = append(s.shapes, sh)
	return nil
}

// UpdateShape merges patch into the shape with the given id. An unknown id
// leaves the store untouched and reports ErrNotFound.
func (s *Store) UpdateShape(id string, patch document.ShapePatch) error {
	i := s.shapeIndex(id)
	if i < 0 {
		return fmt.Errorf("update shape %s: %w", id, ErrNotFound)
	}
	s.shapes[i] = patch.Apply(s.shapes[i])
	return nil
}

// ReplaceShape overwrites the shape with the same id.
func (s *Store) ReplaceShape(sh document.Shape) error {
	i := s.shapeIndex(sh.ID)
	if i < 0 {
		return fmt.Errorf("replace shape %s: %w", sh.ID, ErrNotFound)
	}
	s.shapes[i] = sh.Clone()
	return nil
}

// TranslateShapes moves every listed shape by (dx, dy). Unknown ids are skipped.
func (s *Store) TranslateShapes(ids []string, dx, dy float64) int {
	set := toSet(ids)
	moved := 0
	for i := range s.shapes {
		if _, ok := set[s.shapes[i].ID]; ok {
			s.shapes[i].Translate(dx, dy)
			moved++
		}
	}
	return moved
}

// DeleteSelected removes every selected element and clears the selection.
// It returns the number of elements removed.
func (s *Store) DeleteSelected() int {
	n := s.DeleteElements(s.selection)
	s.selection = nil
	return n
}

// DeleteElements removes the listed elements and prunes them from the selection.
func (s *Store) DeleteElements(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	set := toSet(ids)
	before := s.Len()

	paths := s.paths[:0]
	for _, p := range s.paths {
		if _, gone := set[p.ID]; !gone {
			paths = append(paths, p)
		}
	}
	s.paths = paths

	shapes := s.shapes[:0]
	for _, sh := range s.shapes {
		if _, gone := set[sh.ID]; !gone {
			shapes = append(shapes, sh)
		}
	}
	s.shapes = shapes

	s.pruneSelection()
	return before - s.Len()
}

// SetSelection replaces the selection. Ids that are not in the scene and
// repeated ids are dropped.
func (s *Store) SetSelection(ids []string) {
	s.selection = nil
	for _, id := range ids {
		s.AddToSelection(id)
	}
}

// AddToSelection extends the selection with id if it exists.
func (s *Store) AddToSelection(id string) {
	if !s.has(id) || s.IsSelected(id) {
		return
	}
	s.selection = append(s.selection, id)
}

func (s *Store) ClearSelection() {
	s.selection = nil
}

func (s *Store) IsSelected(id string) bool {
	for _, sel := range s.selection {
		if sel == id {
			return true
		}
	}
	return false
}

// Selection returns a copy of the selected ids in selection order.
func (s *Store) Selection() []string {
	out := make([]string, len(s.selection))
	copy(out, s.selection)
	return out
}

// SelectedShapes returns copies of the selected shapes in z-order.
func (s *Store) SelectedShapes() []document.Shape {
	var out []document.Shape
	for _, sh := range s.shapes {
		if s.IsSelected(sh.ID) {
			out = append(out, sh.Clone())
		}
	}
	return out
}

// Clear empties the scene and the selection.
func (s *Store) Clear() {
	s.paths = []document.Path{}
	s.shapes = []document.Shape{}
	s.selection = nil
}

// Snapshot returns a deep copy of the committed elements.
func (s *Store) Snapshot() document.Scene {
	return document.Scene{Paths: s.paths, Shapes: s.shapes}.Clone()
}

// Restore replaces the scene with a copy of sc and clears the selection.
func (s *Store) Restore(sc document.Scene) {
	cp := sc.Clone()
	s.paths = cp.Paths
	s.shapes = cp.Shapes
	s.selection = nil
}

// Shape returns a copy of the shape with the given id.
func (s *Store) Shape(id string) (document.Shape, bool) {
	i := s.shapeIndex(id)
	if i < 0 {
		return document.Shape{}, false
	}
	return s.shapes[i].Clone(), true
}

// Shapes returns the shapes without copying. Callers must not retain or
// modify the slice.
func (s *Store) Shapes() []document.Shape { return s.shapes }

// Paths returns the paths without copying, under the same rules as Shapes.
func (s *Store) Paths() []document.Path { return s.paths }

func (s *Store) Len() int {
	return len(s.paths) + len(s.shapes)
}

func (s *Store) has(id string) bool {
	if s.shapeIndex(id) >= 0 {
		return true
	}
	for _, p := range s.paths {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) shapeIndex(id string) int {
	for i := range s.shapes {
		if s.shapes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) pruneSelection() {
	kept := s.selection[:0]
	for _, id := range s.selection {
		if s.has(id) {
			kept = append(kept, id)
		}
	}
	s.selection = kept
	if len(s.selection) == 0 {
		s.selection = nil
	}
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
