package collab

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/scene"
)

var ErrInvalidOperation = errors.New("invalid operation")

// DocumentState holds the authoritative scene for a room.
type DocumentState struct {
	mu        sync.RWMutex
	store     *scene.Store
	serverSeq int64
	dirty     bool
}

// NewDocumentState creates a document state seeded with sc.
func NewDocumentState(sc document.Scene) *DocumentState {
	st := scene.NewStore()
	st.Restore(sc)
	return &DocumentState{store: st}
}

// Snapshot returns a copy of the scene and its sequence number.
func (ds *DocumentState) Snapshot() (document.Scene, int64) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.store.Snapshot(), ds.serverSeq
}

// ApplyOperation applies an operation to the scene and returns the server sequence
func (ds *DocumentState) ApplyOperation(op Operation) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := ds.applyOperationLocked(op); err != nil {
		return 0, fmt.Errorf("apply %s: %w", op.Type, err)
	}

	ds.serverSeq++
	ds.dirty = true
	return ds.serverSeq, nil
}

// TakeDirty returns the scene if it changed since the last call.
func (ds *DocumentState) TakeDirty() (document.Scene, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if !ds.dirty {
		return document.Scene{}, false
	}
	ds.dirty = false
	return ds.store.Snapshot(), true
}

// MarkDirty flags the scene for the next save, after a failed one.
func (ds *DocumentState) MarkDirty() {
	ds.mu.Lock()
	ds.dirty = true
	ds.mu.Unlock()
}

// applyOperationLocked applies the operation without locking (caller must hold lock)
func (ds *DocumentState) applyOperationLocked(op Operation) error {
	switch op.Type {
	case OpPathAdd:
		if op.Path == nil {
			return fmt.Errorf("missing path: %w", ErrInvalidOperation)
		}
		return ds.store.AddPath(*op.Path)
	case OpShapeAdd:
		if op.Shape == nil {
			return fmt.Errorf("missing shape: %w", ErrInvalidOperation)
		}
		return ds.store.AddShape(*op.Shape)
	case OpShapeUpdate:
		if op.ObjectID == "" || op.Patch == nil {
			return fmt.Errorf("missing objectId or patch: %w", ErrInvalidOperation)
		}
		return ds.store.UpdateShape(op.ObjectID, *op.Patch)
	case OpElementsDelete:
		if ds.store.DeleteElements(op.IDs) == 0 {
			return fmt.Errorf("no matching elements: %w", scene.ErrNotFound)
		}
		return nil
	case OpSceneClear:
		ds.store.Clear()
		return nil
	case OpSceneReplace:
		if op.Scene == nil {
			return fmt.Errorf("missing scene: %w", ErrInvalidOperation)
		}
		if err := document.Validate(*op.Scene); err != nil {
			return err
		}
		sc := op.Scene.Clone()
		for i := range sc.Shapes {
			sc.Shapes[i].Normalize()
		}
		ds.store.Restore(sc)
		return nil
	default:
		return fmt.Errorf("unknown operation type %q: %w", op.Type, ErrInvalidOperation)
	}
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
