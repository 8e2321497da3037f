// Package history implements a bounded linear undo/redo log of full project
// snapshots.
package history

import "github.com/EmrullahAydogan/video-studio/internal/timeline"

// DefaultLimit bounds the log to the last 50 states.
const DefaultLimit = 50

// Log is a linear snapshot stack with a cursor. The entry at the cursor is
// the current state; entries before it are undoable, entries after it are
// redoable. Snapshots are deep copies and never share mutable state with the
// live project.
type Log struct {
	snapshots []timeline.Project
	cursor    int
	limit     int
}

// NewLog creates a log with the given capacity. A limit <= 0 falls back to
// DefaultLimit.
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{cursor: -1, limit: limit}
}

// Reset discards all entries and records baseline as the single current
// snapshot, so a later chain of undos can return to the state the session
// started from.
func (l *Log) Reset(baseline timeline.Project) {
	l.snapshots = []timeline.Project{baseline.Clone()}
	l.cursor = 0
}

// Push records a new current state. Any redoable entries beyond the cursor
// are discarded first; the oldest entry is evicted when the log exceeds its
// capacity.
func (l *Log) Push(p timeline.Project) {
	l.snapshots = append(l.snapshots[:l.cursor+1], p.Clone())
	if len(l.snapshots) > l.limit {
		l.snapshots = l.snapshots[1:]
	}
	l.cursor = len(l.snapshots) - 1
}

// Undo moves the cursor back one entry and returns a copy of that snapshot.
// It is a no-op at the beginning of the log.
func (l *Log) Undo() (timeline.Project, bool) {
	if !l.CanUndo() {
		return timeline.Project{}, false
	}
	l.cursor--
	return l.snapshots[l.cursor].Clone(), true
}

// Redo moves the cursor forward one entry and returns a copy of that
// snapshot. It is a no-op at the tail.
func (l *Log) Redo() (timeline.Project, bool) {
	if !l.CanRedo() {
		return timeline.Project{}, false
	}
	l.cursor++
	return l.snapshots[l.cursor].Clone(), true
}

func (l *Log) CanUndo() bool {
	return l.cursor > 0
}

func (l *Log) CanRedo() bool {
	return l.cursor >= 0 && l.cursor < len(l.snapshots)-1
}

// Len reports how many snapshots the log currently holds.
func (l *Log) Len() int {
	return len(l.snapshots)
}
