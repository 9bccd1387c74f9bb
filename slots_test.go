package main

import (
	"encoding/json"
	"log/slog"
	"testing"
)

func TestEditorStartsInSlotOne(t *testing.T) {
	e, storage := newTestEditor(t)
	if e.CurrentSlot() != 1 {
		t.Errorf("CurrentSlot = %d, want 1", e.CurrentSlot())
	}
	if e.Project().Name != "Untitled" {
		t.Errorf("Name = %q, want Untitled", e.Project().Name)
	}
	if _, ok, _ := storage.Get(slotsStorageKey); !ok {
		t.Error("initial project was not persisted")
	}

	want := []ProjectInfo{
		{Slot: 1, Name: "Untitled"},
		{Slot: 2, Name: "Empty", IsEmpty: true},
		{Slot: 3, Name: "Empty", IsEmpty: true},
	}
	got := e.ProjectsList()
	if len(got) != len(want) {
		t.Fatalf("len(ProjectsList) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ProjectsList[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSlotStorageLayout(t *testing.T) {
	e, storage := newTestEditor(t)
	e.UpdateProjectName("Layout")
	raw, _, _ := storage.Get(slotsStorageKey)

	var slots map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"slot1", "slot2", "slot3"} {
		if _, ok := slots[key]; !ok {
			t.Errorf("missing key %q in %s", key, raw)
		}
	}
	if string(slots["slot2"]) != "null" {
		t.Errorf("slot2 = %s, want null", slots["slot2"])
	}
	var p Project
	if err := json.Unmarshal(slots["slot1"], &p); err != nil || p.Name != "Layout" {
		t.Errorf("slot1 = %s (%v)", slots["slot1"], err)
	}
}

func TestCreateNewProjectUsesFirstEmptySlot(t *testing.T) {
	e, storage := newTestEditor(t)
	e.AddNode(0, 0.5, 0.5, true)
	e.CreateNewProject("Second")

	if e.CurrentSlot() != 2 {
		t.Errorf("CurrentSlot = %d, want 2", e.CurrentSlot())
	}
	if e.Project().Name != "Second" {
		t.Errorf("Name = %q, want Second", e.Project().Name)
	}
	if e.CanUndo() || e.CanRedo() {
		t.Error("history not reset")
	}
	if v, _, _ := storage.Get(currentSlotKey); v != "2" {
		t.Errorf("current slot key = %q, want 2", v)
	}

	e.SwitchSlot(1)
	if p := e.Project(); p.Name != "Untitled" || len(p.Frames[0].Nodes) != 1 {
		t.Errorf("slot 1 = %q with %d nodes", p.Name, len(p.Frames[0].Nodes))
	}
}

func TestCreateNewProjectAllSlotsFull(t *testing.T) {
	e, _ := newTestEditor(t)
	e.CreateNewProject("Two")
	e.CreateNewProject("Three")
	e.CreateNewProject("Fourth")
	if e.CurrentSlot() != 1 {
		t.Errorf("CurrentSlot = %d, want 1", e.CurrentSlot())
	}
	list := e.ProjectsList()
	names := []string{list[0].Name, list[1].Name, list[2].Name}
	want := []string{"Fourth", "Two", "Three"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("slot %d = %q, want %q", i+1, names[i], want[i])
		}
	}
}

func TestSwitchSlotSavesAndLoads(t *testing.T) {
	e, _ := newTestEditor(t)
	e.UpdateProjectName("First")
	e.AddNode(0, 0.5, 0.5, true)

	e.SwitchSlot(3)
	if p := e.Project(); p.Name != "Untitled" || len(p.Frames) != 5 || len(p.Frames[0].Nodes) != 0 {
		t.Errorf("empty slot loaded %+v", p)
	}
	if e.CanUndo() {
		t.Error("history not reset on switch")
	}

	e.SwitchSlot(1)
	if p := e.Project(); p.Name != "First" || len(p.Frames[0].Nodes) != 1 {
		t.Errorf("slot 1 = %q with %d nodes", p.Name, len(p.Frames[0].Nodes))
	}
}

func TestSwitchSlotInvalid(t *testing.T) {
	e, _ := newTestEditor(t)
	e.UpdateProjectName("Stay")
	for _, slot := range []int{0, 4, -1} {
		e.SwitchSlot(slot)
	}
	if e.CurrentSlot() != 1 || e.Project().Name != "Stay" {
		t.Errorf("invalid switch moved to slot %d (%q)", e.CurrentSlot(), e.Project().Name)
	}
}

func TestCurrentSlotSurvivesRestart(t *testing.T) {
	e, storage := newTestEditor(t)
	e.CreateNewProject("Persisted")

	restarted := newEditor(storage)
	if restarted.CurrentSlot() != 2 {
		t.Errorf("CurrentSlot = %d, want 2", restarted.CurrentSlot())
	}
	if restarted.Project().Name != "Persisted" {
		t.Errorf("Name = %q, want Persisted", restarted.Project().Name)
	}
}

func TestCurrentSlotUnknownValue(t *testing.T) {
	for _, v := range []string{"", "0", "4", "two", "01"} {
		storage := newMemoryStorage()
		storage.Set(currentSlotKey, v)
		if got := newEditor(storage).CurrentSlot(); got != 1 {
			t.Errorf("stored %q: CurrentSlot = %d, want 1", v, got)
		}
	}
}

func TestDeleteCurrentProject(t *testing.T) {
	e, _ := newTestEditor(t)
	e.UpdateProjectName("One")
	e.CreateNewProject("Two")
	e.CreateNewProject("Three")

	e.DeleteCurrentProject()
	if e.CurrentSlot() != 1 || e.Project().Name != "One" {
		t.Errorf("after delete slot %d %q, want 1 One", e.CurrentSlot(), e.Project().Name)
	}
	if list := e.ProjectsList(); !list[2].IsEmpty {
		t.Errorf("slot 3 = %+v, want empty", list[2])
	}
}

func TestDeleteOnlyProject(t *testing.T) {
	e, _ := newTestEditor(t)
	e.UpdateProjectName("Only")
	e.AddNode(0, 0.5, 0.5, true)

	e.DeleteCurrentProject()
	p := e.Project()
	if e.CurrentSlot() != 1 || p.Name != "Untitled" || len(p.Frames[0].Nodes) != 0 {
		t.Errorf("after delete slot %d %q with %d nodes", e.CurrentSlot(), p.Name, len(p.Frames[0].Nodes))
	}
	if e.CanUndo() {
		t.Error("history not reset")
	}
}

func TestStorageFailureIsAbsorbed(t *testing.T) {
	storage := newMemoryStorage()
	storage.quota = 10
	e := newEditor(storage)
	e.AddNode(0, 0.5, 0.5, true)
	e.UpdateProjectName("Unsaved")

	if got := len(nodesOn(e, 0)); got != 1 {
		t.Errorf("len(nodes) = %d, want 1", got)
	}
	if e.Project().Name != "Unsaved" {
		t.Errorf("Name = %q", e.Project().Name)
	}
	if _, ok, _ := storage.Get(slotsStorageKey); ok {
		t.Error("value written past quota")
	}
}

func TestCorruptedStorageIsCleared(t *testing.T) {
	storage := newMemoryStorage()
	storage.Set(slotsStorageKey, "{not json")

	s := newSlotStore(storage, slog.New(slog.DiscardHandler))
	if _, ok := s.load(1); ok {
		t.Error("load returned a project from corrupted storage")
	}
	if _, ok, _ := storage.Get(slotsStorageKey); ok {
		t.Error("corrupted key was not removed")
	}

	storage.Set(slotsStorageKey, "{not json")
	e := newEditor(storage)
	if e.Project().Name != "Untitled" {
		t.Errorf("Name = %q, want Untitled", e.Project().Name)
	}
	if list := e.ProjectsList(); list[0].IsEmpty {
		t.Error("fresh project was not saved after clearing")
	}
}

func TestSlotLoadMergesDefaults(t *testing.T) {
	storage := newMemoryStorage()
	storage.Set(slotsStorageKey, `{"slot1":{"name":"","frames":[{"id":"f1"}],"nodeColor":"#FF0000"},"slot2":null,"slot3":null}`)

	p := newEditor(storage).Project()
	if p.Name != "Untitled" {
		t.Errorf("Name = %q, want Untitled", p.Name)
	}
	if p.NodeColor != "#FF0000" || p.NodeSize != 40 || p.AnimationSpeed != 12 {
		t.Errorf("merge = %q %v %v", p.NodeColor, p.NodeSize, p.AnimationSpeed)
	}
	if len(p.Frames) != 1 || p.Frames[0].ID != "f1" || p.Frames[0].Nodes == nil || p.Frames[0].ReferenceOpacity != 100 {
		t.Errorf("frames = %+v", p.Frames)
	}
}

func TestSlotWithoutFramesIsEmpty(t *testing.T) {
	storage := newMemoryStorage()
	storage.Set(slotsStorageKey, `{"slot1":{"name":"Broken"},"slot2":null,"slot3":null}`)
	e := newEditor(storage)
	if e.Project().Name != "Untitled" || len(e.Project().Frames) != 5 {
		t.Errorf("broken slot loaded %q", e.Project().Name)
	}
}

func TestSlotWithMistypedFieldSurvivesRestart(t *testing.T) {
	storage := newMemoryStorage()
	storage.Set(slotsStorageKey, `{"slot1":{"name":"Mine","canvasSize":"big","frames":[{"id":"f","nodes":[{"id":"n","x":0.5,"y":0.5,"size":1}]}]},"slot2":null,"slot3":null}`)

	e := newEditor(storage)
	p := e.Project()
	if p.Name != "Mine" || len(p.Frames) != 1 || len(p.Frames[0].Nodes) != 1 || p.Frames[0].Nodes[0].ID != "n" {
		t.Fatalf("loaded %q with frames %+v", p.Name, p.Frames)
	}
	if p.CanvasSize != [2]int{500, 500} {
		t.Errorf("CanvasSize = %v, want default", p.CanvasSize)
	}

	restarted := newEditor(storage).Project()
	if restarted.Name != "Mine" || len(restarted.Frames[0].Nodes) != 1 {
		t.Errorf("after restart %q with %d nodes", restarted.Name, len(restarted.Frames[0].Nodes))
	}
}
