// Package history keeps a bounded, linear log of scene snapshots.
package history

import "github.com/inkboard/inkboard/internal/document"

// DefaultCapacity is the number of snapshots retained before the oldest is evicted.
const DefaultCapacity = 50

type State int

const (
	StateEmpty State = iota
	StateTip
	StateRewound
)

func (s State) String() string {
	switch s {
	case StateTip:
		return "tip"
	case StateRewound:
		return "rewound"
	default:
		return "empty"
	}
}

// Log is a linear undo log. Entries after the cursor are redo futures and
// are discarded by the next Commit.
type Log struct {
	entries  []document.Scene
	cursor   int
	capacity int
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{cursor: -1, capacity: capacity}
}

// Commit records a copy of sc as the newest entry.
func (l *Log) Commit(sc document.Scene) {
	l.entries = append(l.entries[:l.cursor+1], sc.Clone())
	l.cursor = len(l.entries) - 1
	if len(l.entries) > l.capacity {
		// keep the cursor naming the same entry after the shift
		l.entries[0] = document.Scene{}
		l.entries = l.entries[1:]
		l.cursor--
	}
}

// Undo steps back one entry and returns a copy of it. It reports false and
// changes nothing at the oldest entry.
func (l *Log) Undo() (document.Scene, bool) {
	if !l.CanUndo() {
		return document.Scene{}, false
	}
	l.cursor--
	return l.entries[l.cursor].Clone(), true
}

// Redo steps forward one entry. It reports false at the tip.
func (l *Log) Redo() (document.Scene, bool) {
	if !l.CanRedo() {
		return document.Scene{}, false
	}
	l.cursor++
	return l.entries[l.cursor].Clone(), true
}

func (l *Log) CanUndo() bool { return l.cursor > 0 }

func (l *Log) CanRedo() bool { return l.cursor >= 0 && l.cursor < len(l.entries)-1 }

// Current returns a copy of the entry under the cursor.
func (l *Log) Current() (document.Scene, bool) {
	if l.cursor < 0 {
		return document.Scene{}, false
	}
	return l.entries[l.cursor].Clone(), true
}

func (l *Log) Len() int    { return len(l.entries) }
func (l *Log) Cursor() int { return l.cursor }

func (l *Log) State() State {
	switch {
	case len(l.entries) == 0:
		return StateEmpty
	case l.cursor == len(l.entries)-1:
		return StateTip
	default:
		return StateRewound
	}
}

// Reset drops every entry and seeds the log with sc.
func (l *Log) Reset(sc document.Scene) {
	l.entries = nil
	l.cursor = -1
	l.Commit(sc)
}
