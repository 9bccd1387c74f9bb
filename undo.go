package main

import (
	"encoding/json"
	"fmt"
)

// History holds bounded undo and redo stacks of serialized project
// snapshots. canUndo and canRedo are recomputed on every stack change.
type History struct {
	past    [][]byte
	future  [][]byte
	limit   int
	canUndo bool
	canRedo bool
}

func newHistory(limit int) *History {
	if limit <= 0 {
		limit = maxHistorySize
	}
	return &History{limit: limit}
}

func (h *History) CanUndo() bool { return h.canUndo }
func (h *History) CanRedo() bool { return h.canRedo }

// Len reports the number of undo and redo entries.
func (h *History) Len() (past, future int) { return len(h.past), len(h.future) }

func (h *History) sync() {
	h.canUndo = len(h.past) > 0
	h.canRedo = len(h.future) > 0
}

func pushBounded(stack [][]byte, snap []byte, limit int) [][]byte {
	stack = append(stack, snap)
	if len(stack) > limit {
		stack = append(stack[:0:0], stack[len(stack)-limit:]...)
	}
	return stack
}

func snapshot(p Project) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("snapshot project: %w", err)
	}
	return data, nil
}

func restore(data []byte) (Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return Project{}, fmt.Errorf("restore snapshot: %w", err)
	}
	return p, nil
}

// record pushes the state before a tracked operation and clears the redo
// stack.
func (h *History) record(previous Project) error {
	snap, err := snapshot(previous)
	if err != nil {
		return err
	}
	h.past = pushBounded(h.past, snap, h.limit)
	h.future = nil
	h.sync()
	return nil
}

// undo pops the newest past entry and pushes current onto the future
// stack. ok is false when there is nothing to undo.
func (h *History) undo(current Project) (restored Project, ok bool, err error) {
	if len(h.past) == 0 {
		return current, false, nil
	}
	cur, err := snapshot(current)
	if err != nil {
		return current, false, err
	}
	last := len(h.past) - 1
	prev, err := restore(h.past[last])
	if err != nil {
		return current, false, err
	}
	h.past = h.past[:last]
	h.future = pushBounded(h.future, cur, h.limit)
	h.sync()
	return carryUIState(prev, current), true, nil
}

func (h *History) redo(current Project) (restored Project, ok bool, err error) {
	if len(h.future) == 0 {
		return current, false, nil
	}
	cur, err := snapshot(current)
	if err != nil {
		return current, false, err
	}
	last := len(h.future) - 1
	next, err := restore(h.future[last])
	if err != nil {
		return current, false, err
	}
	h.future = h.future[:last]
	h.past = pushBounded(h.past, cur, h.limit)
	h.sync()
	return carryUIState(next, current), true, nil
}

func (h *History) reset() {
	h.past = nil
	h.future = nil
	h.sync()
}

// carryUIState copies drawMode, currentFrameIndex, nodeSizeMultiplier and
// isPlaying from current onto a restored snapshot.
func carryUIState(restored, current Project) Project {
	restored.DrawMode = current.DrawMode
	restored.CurrentFrameIndex = current.CurrentFrameIndex
	restored.NodeSizeMultiplier = current.NodeSizeMultiplier
	restored.IsPlaying = current.IsPlaying
	return restored
}
