package main

// Pure project transforms. Each returns a new Project and never writes
// through a slice shared with its input. Out-of-range frame indexes and
// unknown node ids return the input unchanged; the bool result reports
// whether anything changed.

func withFrame(p Project, index int, f Frame) Project {
	frames := make([]Frame, len(p.Frames))
	copy(frames, p.Frames)
	frames[index] = f
	p.Frames = frames
	return p
}

func addNode(p Project, frameIndex int, x, y float64) (Project, bool) {
	f, ok := p.frame(frameIndex)
	if !ok {
		return p, false
	}
	ordinal := len(f.Nodes)
	n := newNode(x, y, "", p.NodeSizeMultiplier, assignImageIndex(ordinal, len(p.ImageLibrary), p.ImageShuffleType))
	nodes := make([]Node, 0, ordinal+1)
	nodes = append(nodes, f.Nodes...)
	f.Nodes = append(nodes, n)
	return withFrame(p, frameIndex, f), true
}

func moveNode(p Project, frameIndex int, nodeID string, x, y float64) (Project, bool) {
	f, ok := p.frame(frameIndex)
	if !ok {
		return p, false
	}
	i := f.nodeIndex(nodeID)
	if i < 0 {
		return p, false
	}
	nodes := append([]Node{}, f.Nodes...)
	nodes[i].X, nodes[i].Y = x, y
	f.Nodes = nodes
	return withFrame(p, frameIndex, f), true
}

func removeNode(p Project, frameIndex int, nodeID string) (Project, bool) {
	f, ok := p.frame(frameIndex)
	if !ok {
		return p, false
	}
	i := f.nodeIndex(nodeID)
	if i < 0 {
		return p, false
	}
	nodes := make([]Node, 0, len(f.Nodes)-1)
	nodes = append(nodes, f.Nodes[:i]...)
	f.Nodes = append(nodes, f.Nodes[i+1:]...)
	return withFrame(p, frameIndex, f), true
}

func clearFrameNodes(p Project, frameIndex int) (Project, bool) {
	f, ok := p.frame(frameIndex)
	if !ok || len(f.Nodes) == 0 {
		return p, false
	}
	f.Nodes = []Node{}
	return withFrame(p, frameIndex, f), true
}

func addFrame(p Project) Project {
	frames := make([]Frame, 0, len(p.Frames)+1)
	frames = append(frames, p.Frames...)
	p.Frames = append(frames, newFrame(""))
	return p
}

// removeFrame never removes the last frame. currentFrameIndex is not
// shifted to follow the selected frame; it is only clamped to the new end.
func removeFrame(p Project, index int) (Project, bool) {
	if len(p.Frames) <= 1 || index < 0 || index >= len(p.Frames) {
		return p, false
	}
	frames := make([]Frame, 0, len(p.Frames)-1)
	frames = append(frames, p.Frames[:index]...)
	frames = append(frames, p.Frames[index+1:]...)
	p.Frames = frames
	// Removing the final frame clamps. So does removing an earlier frame
	// while the last one is selected, which would otherwise leave the
	// index one past the end.
	if index >= len(frames) || p.CurrentFrameIndex >= len(frames) {
		p.CurrentFrameIndex = len(frames) - 1
	}
	return p, true
}

func duplicateFrame(p Project, index int) (Project, bool) {
	f, ok := p.frame(index)
	if !ok {
		return p, false
	}
	dup := f.clone()
	dup.ID = newFrameID()
	for i := range dup.Nodes {
		dup.Nodes[i].ID = newNodeID()
	}
	frames := make([]Frame, 0, len(p.Frames)+1)
	frames = append(frames, p.Frames[:index+1]...)
	frames = append(frames, dup)
	frames = append(frames, p.Frames[index+1:]...)
	p.Frames = frames
	return p, true
}

// reorderFrames moves the frame at from to position to. The current frame
// index follows the frame that was selected before the move.
func reorderFrames(p Project, from, to int) (Project, bool) {
	n := len(p.Frames)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return p, false
	}
	frames := append([]Frame{}, p.Frames...)
	moved := frames[from]
	frames = append(frames[:from], frames[from+1:]...)
	frames = append(frames[:to], append([]Frame{moved}, frames[to:]...)...)
	p.Frames = frames

	cur := p.CurrentFrameIndex
	switch {
	case cur == from:
		p.CurrentFrameIndex = to
	case from < cur && cur <= to:
		p.CurrentFrameIndex = cur - 1
	case to <= cur && cur < from:
		p.CurrentFrameIndex = cur + 1
	}
	return p, true
}

func setReferenceImage(p Project, frameIndex int, src string) (Project, bool) {
	f, ok := p.frame(frameIndex)
	if !ok {
		return p, false
	}
	f.ReferenceImage = src
	return withFrame(p, frameIndex, f), true
}

func setReferenceOpacity(p Project, frameIndex int, opacity float64) (Project, bool) {
	f, ok := p.frame(frameIndex)
	if !ok {
		return p, false
	}
	f.ReferenceOpacity = opacity
	return withFrame(p, frameIndex, f), true
}

// Settings is a partial project update. Nil fields are left unchanged; a
// non-nil empty ImageLibrary clears the library.
type Settings struct {
	Name                *string
	CanvasSize          *[2]int
	BackgroundColor     *string
	NodeColor           *string
	NodeSize            *float64
	FreehandSpacing     *float64
	DrawMode            *DrawMode
	ImageShuffleType    *ShuffleType
	ImageLibrary        []string
	AnimationSpeed      *float64
	ExportQualityGIF    *int
	ExportQualityVideo  *float64
	ShowImages          *bool
	ClipMode            *bool
	ClipBackgroundImage *string
}

// applySettings merges s into p. A shuffle type change reassigns every
// node's image when the library is non-empty; otherwise a library whose
// length changes to a different non-zero value triggers the same
// reassignment with the resulting shuffle type.
func applySettings(p Project, s Settings) Project {
	prev := p
	if s.Name != nil {
		p.Name = *s.Name
	}
	if s.CanvasSize != nil {
		p.CanvasSize = *s.CanvasSize
	}
	if s.BackgroundColor != nil {
		p.BackgroundColor = *s.BackgroundColor
	}
	if s.NodeColor != nil {
		p.NodeColor = *s.NodeColor
	}
	if s.NodeSize != nil {
		p.NodeSize = *s.NodeSize
	}
	if s.FreehandSpacing != nil {
		p.FreehandSpacing = *s.FreehandSpacing
	}
	if s.DrawMode != nil {
		p.DrawMode = *s.DrawMode
	}
	if s.ImageShuffleType != nil {
		p.ImageShuffleType = *s.ImageShuffleType
	}
	if s.ImageLibrary != nil {
		lib := s.ImageLibrary
		if len(lib) > maxLibrarySize {
			lib = lib[:maxLibrarySize]
		}
		p.ImageLibrary = append([]string{}, lib...)
	}
	if s.AnimationSpeed != nil {
		p.AnimationSpeed = *s.AnimationSpeed
	}
	if s.ExportQualityGIF != nil {
		p.ExportQualityGIF = *s.ExportQualityGIF
	}
	if s.ExportQualityVideo != nil {
		p.ExportQualityVideo = *s.ExportQualityVideo
	}
	if s.ShowImages != nil {
		p.ShowImages = *s.ShowImages
	}
	if s.ClipMode != nil {
		p.ClipMode = *s.ClipMode
	}
	if s.ClipBackgroundImage != nil {
		p.ClipBackgroundImage = *s.ClipBackgroundImage
	}

	switch {
	case s.ImageShuffleType != nil && *s.ImageShuffleType != prev.ImageShuffleType && len(p.ImageLibrary) > 0:
		p = reassignAllImages(p, p.ImageShuffleType)
	case s.ImageLibrary != nil && len(p.ImageLibrary) > 0 && len(p.ImageLibrary) != len(prev.ImageLibrary):
		p = reassignAllImages(p, p.ImageShuffleType)
	}
	return p
}
