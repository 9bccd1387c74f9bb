package main

// assignImageIndex maps a node's position within its frame to a library
// image. It returns nil when the library is empty.
func assignImageIndex(ordinal, libraryLength int, policy ShuffleType) *int {
	if libraryLength <= 0 {
		return nil
	}
	switch policy {
	case ShuffleSequential:
		return intPtr(ordinal % libraryLength)
	case ShuffleRandom:
		// Fixed prime multiplier: stable across calls, not cryptographic.
		return intPtr((ordinal * randomShuffleK) % libraryLength)
	case ShuffleDuplicateRepeats:
		return intPtr((ordinal / libraryLength) % libraryLength)
	}
	return intPtr(ordinal % libraryLength)
}

// reassignAllImages recomputes every node's image index from its position in
// its own frame. A project with an empty library is returned unchanged.
func reassignAllImages(p Project, policy ShuffleType) Project {
	if len(p.ImageLibrary) == 0 {
		return p
	}
	frames := make([]Frame, len(p.Frames))
	for fi, f := range p.Frames {
		nodes := make([]Node, len(f.Nodes))
		for ni, n := range f.Nodes {
			n.ImageIndex = assignImageIndex(ni, len(p.ImageLibrary), policy)
			nodes[ni] = n
		}
		f.Nodes = nodes
		frames[fi] = f
	}
	p.Frames = frames
	return p
}
