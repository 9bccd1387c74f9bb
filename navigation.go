package main

import tea "github.com/charmbracelet/bubbletea"

func (m *model) handleNavigation(key string, speed int) (tea.Model, tea.Cmd) {
	m.handleCursorMove(key, speed)
	m.followCursor()
	return *m, nil
}

func (m *model) handleCursorMove(key string, speed int) {
	switch key {
	case "h", "left", "H", "shift+left":
		m.cursorX -= speed
	case "l", "right", "L", "shift+right":
		m.cursorX += speed
	case "k", "up", "K", "shift+up":
		m.cursorY -= speed
	case "j", "down", "J", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

// gridSize is the number of character cells the canvas occupies.
func (m *model) gridSize() (cols, rows int) {
	cols, rows = m.width, m.height-2
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

func (m *model) ensureCursorInBounds() {
	cols, rows := m.gridSize()
	if m.cursorX < 0 {
		m.cursorX = 0
	}
	if m.cursorY < 0 {
		m.cursorY = 0
	}
	if m.cursorX >= cols {
		m.cursorX = cols - 1
	}
	if m.cursorY >= rows {
		m.cursorY = rows - 1
	}
}

// cursorPoint is the cursor cell's center in normalized canvas coordinates,
// clamped to [0, 1].
func (m *model) cursorPoint() point {
	cols, rows := m.gridSize()
	return point{
		X: clamp((float64(m.cursorX)+0.5)/float64(cols), 0, 1),
		Y: clamp((float64(m.cursorY)+0.5)/float64(rows), 0, 1),
	}
}

// followCursor continues an in-progress gesture after the cursor moved:
// freehand strokes place spaced points, a grabbed node follows uncommitted.
func (m *model) followCursor() {
	p := m.editor.Project()
	if p.IsPlaying {
		return
	}
	pt := m.cursorPoint()
	switch {
	case m.penDown && p.DrawMode == DrawFreehand:
		w, h := float64(p.CanvasSize[0]), float64(p.CanvasSize[1])
		if pixelDistance(point{m.lastPenX, m.lastPenY}, pt, w, h) >= p.FreehandSpacing {
			m.editor.AddNode(p.CurrentFrameIndex, pt.X, pt.Y, false)
			m.lastPenX, m.lastPenY = pt.X, pt.Y
		}
	case m.grabbedNode != "" && p.DrawMode == DrawEdit:
		m.editor.UpdateNodePosition(p.CurrentFrameIndex, m.grabbedNode, pt.X, pt.Y, false)
	}
}

// finishGesture ends a freehand stroke or commits a node drag. Points
// already placed by a stroke stay in place.
func (m *model) finishGesture() {
	m.penDown = false
	if m.grabbedNode == "" {
		return
	}
	p := m.editor.Project()
	if f, ok := p.frame(p.CurrentFrameIndex); ok {
		if i := f.nodeIndex(m.grabbedNode); i >= 0 {
			n := f.Nodes[i]
			m.editor.UpdateNodePosition(p.CurrentFrameIndex, n.ID, n.X, n.Y, true)
		}
	}
	m.grabbedNode = ""
}

func (m *model) setFrame(index int) {
	m.finishGesture()
	p := m.editor.Project()
	m.editor.SetCurrentFrame(clampInt(index, 0, len(p.Frames)-1))
}
