package main

import (
	"errors"
	"fmt"
	"log/slog"
)

// Editor owns the live project, its undo history and the slot it is stored
// in. Every state change is written to the active slot; storage failures
// are logged and otherwise ignored so the in-memory project stays usable.
type Editor struct {
	project Project
	history *History
	slots   *slotStore
	slot    int
	log     *slog.Logger

	// dragAnchor is the state before the first uncommitted move of the
	// current drag gesture; dragNode identifies the dragged node.
	dragAnchor *Project
	dragNode   dragKey
}

type dragKey struct {
	frame int
	node  string
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

func withLogger(l *slog.Logger) EditorOption {
	return func(e *Editor) { e.log = l }
}

func withHistoryLimit(n int) EditorOption {
	return func(e *Editor) { e.history = newHistory(n) }
}

// newEditor restores the active slot from storage, or starts an empty
// project when the slot holds nothing usable.
func newEditor(storage Storage, opts ...EditorOption) *Editor {
	e := &Editor{
		history: newHistory(maxHistorySize),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(e)
	}
	e.slots = newSlotStore(storage, e.log)
	e.slot = e.slots.currentSlot()
	if p, ok := e.slots.load(e.slot); ok {
		e.project = p
	} else {
		e.project = newEmptyProject("")
	}
	e.persist()
	return e
}

// Project returns a deep copy of the live project.
func (e *Editor) Project() Project { return e.project.clone() }

func (e *Editor) CurrentSlot() int { return e.slot }
func (e *Editor) CanUndo() bool    { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool    { return e.history.CanRedo() }

func (e *Editor) persist() {
	if err := e.slots.save(e.project, e.slot); err != nil {
		e.log.Error("save project", "slot", e.slot, "err", err)
	}
}

func (e *Editor) set(p Project) {
	e.project = p
	e.persist()
}

// setTracked records the current state in history before replacing it.
func (e *Editor) setTracked(p Project) {
	e.CancelDrag()
	if err := e.history.record(e.project); err != nil {
		e.log.Error("record history", "err", err)
	}
	e.set(p)
}

func (e *Editor) resetHistory() {
	e.CancelDrag()
	e.history.reset()
}

// CancelDrag forgets an uncommitted drag. Moves already applied stay; the
// next commit records only its own change.
func (e *Editor) CancelDrag() {
	e.dragAnchor = nil
	e.dragNode = dragKey{}
}

// AddNode appends a node to a frame. saveHistory is true for a stamp and for
// the first point of a freehand stroke, false for the rest of the stroke.
func (e *Editor) AddNode(frameIndex int, x, y float64, saveHistory bool) {
	next, ok := addNode(e.project, frameIndex, x, y)
	if !ok {
		return
	}
	if saveHistory {
		e.setTracked(next)
		return
	}
	e.set(next)
}

// UpdateNodePosition moves a node. Drag updates pass saveHistory=false; the
// final update of the gesture passes true and records one undo entry holding
// the state from before the drag began.
func (e *Editor) UpdateNodePosition(frameIndex int, nodeID string, x, y float64, saveHistory bool) {
	next, ok := moveNode(e.project, frameIndex, nodeID, x, y)
	if !ok {
		return
	}
	key := dragKey{frameIndex, nodeID}
	if !saveHistory {
		if e.dragAnchor == nil || e.dragNode != key {
			anchor := e.project
			e.dragAnchor = &anchor
			e.dragNode = key
		}
		e.set(next)
		return
	}
	before := e.project
	if e.dragAnchor != nil && e.dragNode == key {
		before = *e.dragAnchor
	}
	e.CancelDrag()
	if err := e.history.record(before); err != nil {
		e.log.Error("record history", "err", err)
	}
	e.set(next)
}

func (e *Editor) RemoveNode(frameIndex int, nodeID string) {
	if next, ok := removeNode(e.project, frameIndex, nodeID); ok {
		e.setTracked(next)
	}
}

func (e *Editor) ClearFrameNodes(frameIndex int) {
	if next, ok := clearFrameNodes(e.project, frameIndex); ok {
		e.setTracked(next)
	}
}

// SetNodeSizeMultiplier accepts any value; callers clamp.
func (e *Editor) SetNodeSizeMultiplier(v float64) {
	p := e.project
	p.NodeSizeMultiplier = v
	e.set(p)
}

// SetCurrentFrame does not validate the index; callers clamp. During
// playback the change is kept in memory and written when playback stops.
func (e *Editor) SetCurrentFrame(index int) {
	e.project.CurrentFrameIndex = index
	if !e.project.IsPlaying {
		e.persist()
	}
}

// Frame list changes end any uncommitted drag.

func (e *Editor) AddFrame() {
	e.CancelDrag()
	e.set(addFrame(e.project))
}

func (e *Editor) RemoveFrame(index int) {
	if next, ok := removeFrame(e.project, index); ok {
		e.CancelDrag()
		e.set(next)
	}
}

func (e *Editor) DuplicateFrame(index int) {
	if next, ok := duplicateFrame(e.project, index); ok {
		e.CancelDrag()
		e.set(next)
	}
}

func (e *Editor) ReorderFrames(from, to int) {
	if next, ok := reorderFrames(e.project, from, to); ok {
		e.CancelDrag()
		e.set(next)
	}
}

func (e *Editor) UpdateSettings(s Settings) {
	if s.ImageLibrary != nil && len(s.ImageLibrary) > maxLibrarySize {
		e.log.Warn("image library truncated", "size", len(s.ImageLibrary), "max", maxLibrarySize)
	}
	e.set(applySettings(e.project, s))
}

// ReassignNodeImages recomputes every node's image with the given policy.
func (e *Editor) ReassignNodeImages(policy ShuffleType) {
	e.set(reassignAllImages(e.project, policy))
}

func (e *Editor) UpdateProjectName(name string) {
	p := e.project
	p.Name = name
	e.set(p)
}

func (e *Editor) SetIsPlaying(playing bool) {
	p := e.project
	p.IsPlaying = playing
	e.set(p)
}

// UpdateFrameReferenceImage sets a frame's backdrop; "" removes it.
func (e *Editor) UpdateFrameReferenceImage(frameIndex int, src string) {
	if next, ok := setReferenceImage(e.project, frameIndex, src); ok {
		e.set(next)
	}
}

func (e *Editor) UpdateFrameReferenceOpacity(frameIndex int, opacity float64) {
	if next, ok := setReferenceOpacity(e.project, frameIndex, opacity); ok {
		e.set(next)
	}
}

// AddLibraryImage appends src to the image library. It reports false when
// the library is full.
func (e *Editor) AddLibraryImage(src string) bool {
	if len(e.project.ImageLibrary) >= maxLibrarySize {
		return false
	}
	lib := append(append([]string{}, e.project.ImageLibrary...), src)
	e.UpdateSettings(Settings{ImageLibrary: lib})
	return true
}

func (e *Editor) RemoveLibraryImage(index int) {
	lib := e.project.ImageLibrary
	if index < 0 || index >= len(lib) {
		return
	}
	next := make([]string, 0, len(lib)-1)
	next = append(next, lib[:index]...)
	next = append(next, lib[index+1:]...)
	e.UpdateSettings(Settings{ImageLibrary: next})
}

func (e *Editor) Undo() {
	e.CancelDrag()
	p, ok, err := e.history.undo(e.project)
	if err != nil {
		e.log.Error("undo", "err", err)
		return
	}
	if ok {
		e.set(p)
	}
}

func (e *Editor) Redo() {
	e.CancelDrag()
	p, ok, err := e.history.redo(e.project)
	if err != nil {
		e.log.Error("redo", "err", err)
		return
	}
	if ok {
		e.set(p)
	}
}

// ProjectsList reports every slot, read fresh from storage.
func (e *Editor) ProjectsList() []ProjectInfo { return e.slots.list() }

func (e *Editor) activate(slot int, p Project) {
	e.project = p
	if slot != e.slot {
		e.slot = slot
		if err := e.slots.setCurrentSlot(slot); err != nil {
			e.log.Error("save current slot", "slot", slot, "err", err)
		}
	}
	e.resetHistory()
	e.persist()
}

// SwitchSlot stores the live project and loads the target slot, or an empty
// project if the target is empty.
func (e *Editor) SwitchSlot(slot int) {
	if !validSlot(slot) {
		e.log.Warn("switch slot", "slot", slot, "err", errInvalidSlot)
		return
	}
	e.persist()
	p, ok := e.slots.load(slot)
	if !ok {
		p = newEmptyProject("")
	}
	e.activate(slot, p)
}

// CreateNewProject stores the live project, then writes an empty project to
// the first empty slot, or slot 1 when every slot is taken.
func (e *Editor) CreateNewProject(name string) {
	e.persist()
	target := 1
	for _, info := range e.slots.list() {
		if info.IsEmpty {
			target = info.Slot
			break
		}
	}
	p := newEmptyProject(name)
	if err := e.slots.save(p, target); err != nil {
		e.log.Error("save new project", "slot", target, "err", err)
	}
	e.activate(target, p)
}

// DeleteCurrentProject clears the active slot without saving it, then moves
// to the first non-empty slot or starts an empty project in place.
func (e *Editor) DeleteCurrentProject() {
	if err := e.slots.clear(e.slot); err != nil {
		e.log.Error("clear slot", "slot", e.slot, "err", err)
	}
	for _, info := range e.slots.list() {
		if info.IsEmpty {
			continue
		}
		if p, ok := e.slots.load(info.Slot); ok {
			e.activate(info.Slot, p)
			return
		}
	}
	e.activate(e.slot, newEmptyProject(""))
}

// ImportProject replaces the live project with a decoded document. On error
// the live project is untouched.
func (e *Editor) ImportProject(data []byte) error {
	p, dropped, err := decodeProject(data)
	if err != nil {
		return fmt.Errorf("import project: %w", err)
	}
	for _, d := range dropped {
		e.log.Warn("import field reset to default", "field", d)
	}
	e.activate(e.slot, p)
	return nil
}

// ExportJSON serializes the full live project.
func (e *Editor) ExportJSON() ([]byte, error) {
	return encodeProject(e.project)
}

func isInvalidProject(err error) bool { return errors.Is(err, errInvalidProject) }
