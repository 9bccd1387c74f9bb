package main

import "testing"

func frameIDs(p Project) []string {
	ids := make([]string, len(p.Frames))
	for i, f := range p.Frames {
		ids[i] = f.ID
	}
	return ids
}

func TestAddNodeDoesNotAliasInput(t *testing.T) {
	p := newEmptyProject("")
	next, ok := addNode(p, 0, 0.5, 0.5)
	if !ok {
		t.Fatal("addNode reported no change")
	}
	if len(p.Frames[0].Nodes) != 0 {
		t.Errorf("input frame has %d nodes, want 0", len(p.Frames[0].Nodes))
	}
	if len(next.Frames[0].Nodes) != 1 {
		t.Fatalf("output frame has %d nodes, want 1", len(next.Frames[0].Nodes))
	}
	n := next.Frames[0].Nodes[0]
	if n.X != 0.5 || n.Y != 0.5 || n.Size != 1.0 || n.ImageIndex != nil {
		t.Errorf("node = %+v", n)
	}
}

func TestAddNodeUsesSizeMultiplier(t *testing.T) {
	p := newEmptyProject("")
	p.NodeSizeMultiplier = 2.5
	next, _ := addNode(p, 0, 0.5, 0.5)
	if got := next.Frames[0].Nodes[0].Size; got != 2.5 {
		t.Errorf("Size = %v, want 2.5", got)
	}
}

func TestFrameScopedOutOfRange(t *testing.T) {
	p := newEmptyProject("")
	for _, idx := range []int{-1, 5, 99} {
		if _, ok := addNode(p, idx, 0, 0); ok {
			t.Errorf("addNode(%d) changed the project", idx)
		}
		if _, ok := clearFrameNodes(p, idx); ok {
			t.Errorf("clearFrameNodes(%d) changed the project", idx)
		}
		if _, ok := duplicateFrame(p, idx); ok {
			t.Errorf("duplicateFrame(%d) changed the project", idx)
		}
		if _, ok := setReferenceOpacity(p, idx, 50); ok {
			t.Errorf("setReferenceOpacity(%d) changed the project", idx)
		}
	}
}

func TestRemoveFrame(t *testing.T) {
	tests := []struct {
		name      string
		frames    int
		current   int
		remove    int
		wantLen   int
		wantIndex int
		wantOK    bool
	}{
		{"last frame selected", 5, 4, 4, 4, 3, true},
		{"earlier frame keeps index", 5, 2, 0, 4, 2, true},
		{"current past new end clamps", 5, 4, 1, 4, 3, true},
		{"later frame keeps index", 5, 1, 3, 4, 1, true},
		{"single frame kept", 1, 0, 0, 1, 0, false},
		{"out of range", 5, 0, 7, 5, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newEmptyProject("")
			p.Frames = p.Frames[:tt.frames]
			p.CurrentFrameIndex = tt.current
			got, ok := removeFrame(p, tt.remove)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if len(got.Frames) != tt.wantLen {
				t.Errorf("len(Frames) = %d, want %d", len(got.Frames), tt.wantLen)
			}
			if got.CurrentFrameIndex != tt.wantIndex {
				t.Errorf("CurrentFrameIndex = %d, want %d", got.CurrentFrameIndex, tt.wantIndex)
			}
		})
	}
}

func TestDuplicateFrame(t *testing.T) {
	p := newEmptyProject("")
	p, _ = addNode(p, 1, 0.2, 0.3)
	p, _ = addNode(p, 1, 0.4, 0.5)
	p.Frames[1].ReferenceImage = "ref.png"

	got, ok := duplicateFrame(p, 1)
	if !ok {
		t.Fatal("duplicateFrame reported no change")
	}
	if len(got.Frames) != 6 {
		t.Fatalf("len(Frames) = %d, want 6", len(got.Frames))
	}
	src, dup := got.Frames[1], got.Frames[2]
	if dup.ID == src.ID {
		t.Error("duplicate kept the frame id")
	}
	if dup.ReferenceImage != "ref.png" {
		t.Errorf("ReferenceImage = %q, want ref.png", dup.ReferenceImage)
	}
	if len(dup.Nodes) != 2 {
		t.Fatalf("duplicate has %d nodes, want 2", len(dup.Nodes))
	}
	for i := range dup.Nodes {
		if dup.Nodes[i].ID == src.Nodes[i].ID {
			t.Errorf("node %d kept its id", i)
		}
		if dup.Nodes[i].X != src.Nodes[i].X || dup.Nodes[i].Y != src.Nodes[i].Y {
			t.Errorf("node %d moved: %+v vs %+v", i, dup.Nodes[i], src.Nodes[i])
		}
	}
	if got.Frames[3].ID != p.Frames[2].ID {
		t.Error("frames after the duplicate were not shifted")
	}
}

func TestReorderFrames(t *testing.T) {
	p := newEmptyProject("")
	ids := frameIDs(p)

	got, ok := reorderFrames(p, 0, 2)
	if !ok {
		t.Fatal("reorderFrames reported no change")
	}
	want := []string{ids[1], ids[2], ids[0], ids[3], ids[4]}
	for i, id := range frameIDs(got) {
		if id != want[i] {
			t.Errorf("frame %d = %s, want %s", i, id, want[i])
		}
	}
	if got.CurrentFrameIndex != 2 {
		t.Errorf("CurrentFrameIndex = %d, want 2", got.CurrentFrameIndex)
	}
	if frameIDs(p)[0] != ids[0] {
		t.Error("reorderFrames modified its input")
	}
}

func TestReorderFramesCurrentFollowsSelection(t *testing.T) {
	tests := []struct {
		from, to, current, want int
	}{
		{0, 3, 2, 1},
		{4, 1, 2, 3},
		{3, 4, 0, 0},
		{1, 0, 1, 0},
	}
	for _, tt := range tests {
		p := newEmptyProject("")
		p.CurrentFrameIndex = tt.current
		selected := p.Frames[tt.current].ID
		got, _ := reorderFrames(p, tt.from, tt.to)
		if got.CurrentFrameIndex != tt.want {
			t.Errorf("reorder %d->%d current %d: got %d, want %d", tt.from, tt.to, tt.current, got.CurrentFrameIndex, tt.want)
		}
		if got.Frames[got.CurrentFrameIndex].ID != selected {
			t.Errorf("reorder %d->%d: selection moved to another frame", tt.from, tt.to)
		}
	}
}

func TestApplySettingsLibraryReassigns(t *testing.T) {
	p := newEmptyProject("")
	for i := 0; i < 3; i++ {
		p, _ = addNode(p, 0, 0.5, 0.5)
	}
	got := applySettings(p, Settings{ImageLibrary: []string{"x", "y"}})
	want := []int{0, 0, 1}
	for i, n := range got.Frames[0].Nodes {
		if n.ImageIndex == nil || *n.ImageIndex != want[i] {
			t.Errorf("node %d index = %v, want %d", i, n.ImageIndex, want[i])
		}
	}
}

func TestApplySettingsShuffleChangeReassigns(t *testing.T) {
	p := newEmptyProject("")
	p.ImageLibrary = []string{"a", "b", "c"}
	for i := 0; i < 3; i++ {
		p, _ = addNode(p, 0, 0.5, 0.5)
	}
	got := applySettings(p, Settings{ImageShuffleType: ptr(ShuffleSequential)})
	for i, n := range got.Frames[0].Nodes {
		if *n.ImageIndex != i {
			t.Errorf("node %d index = %d, want %d", i, *n.ImageIndex, i)
		}
	}
}

func TestApplySettingsSameLengthLibraryKeepsIndexes(t *testing.T) {
	p := newEmptyProject("")
	p.ImageLibrary = []string{"a", "b"}
	p.Frames[0].Nodes = []Node{newNode(0, 0, "", 1, intPtr(1))}
	got := applySettings(p, Settings{ImageLibrary: []string{"c", "d"}})
	if *got.Frames[0].Nodes[0].ImageIndex != 1 {
		t.Errorf("index = %d, want 1", *got.Frames[0].Nodes[0].ImageIndex)
	}
}

func TestApplySettingsClearLibraryKeepsStaleIndexes(t *testing.T) {
	p := newEmptyProject("")
	p.ImageLibrary = []string{"a", "b"}
	p.Frames[0].Nodes = []Node{newNode(0, 0, "", 1, intPtr(1))}
	got := applySettings(p, Settings{ImageLibrary: []string{}})
	if len(got.ImageLibrary) != 0 {
		t.Errorf("ImageLibrary = %v, want empty", got.ImageLibrary)
	}
	if idx := got.Frames[0].Nodes[0].ImageIndex; idx == nil || *idx != 1 {
		t.Errorf("index = %v, want stale 1", idx)
	}
}

func TestApplySettingsTruncatesLibrary(t *testing.T) {
	lib := make([]string, 25)
	for i := range lib {
		lib[i] = string(rune('a' + i))
	}
	got := applySettings(newEmptyProject(""), Settings{ImageLibrary: lib})
	if len(got.ImageLibrary) != 20 {
		t.Errorf("len(ImageLibrary) = %d, want 20", len(got.ImageLibrary))
	}
	if got.ImageLibrary[19] != "t" {
		t.Errorf("last image = %q, want t", got.ImageLibrary[19])
	}
}

func TestApplySettingsNilFieldsUnchanged(t *testing.T) {
	p := newEmptyProject("Keep")
	p.ImageLibrary = []string{"a"}
	got := applySettings(p, Settings{NodeColor: ptr("#FF0000")})
	if got.NodeColor != "#FF0000" {
		t.Errorf("NodeColor = %q", got.NodeColor)
	}
	if got.Name != "Keep" || len(got.ImageLibrary) != 1 || got.BackgroundColor != "#E5E5E5" {
		t.Errorf("unrelated fields changed: %+v", got)
	}
}
