package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const imageGlyphs = "0123456789abcdefghijklmnopqrstuvwxyz"

var (
	statusStyle  = lipgloss.NewStyle().Reverse(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	grabStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellNode
	cellImage
	cellGrabbed
)

type cell struct {
	kind  cellKind
	glyph rune
}

// renderGrid rasterizes the current frame onto a cols x rows character
// grid. Later nodes overwrite earlier ones, matching draw order.
func renderGrid(p Project, cols, rows int, grabbed string) [][]cell {
	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
	}
	f, ok := p.frame(p.CurrentFrameIndex)
	if !ok || p.CanvasSize[0] <= 0 || p.CanvasSize[1] <= 0 {
		return grid
	}
	base := p.NodeSize * p.NodeSizeMultiplier
	for _, n := range f.Nodes {
		size := base * n.Size
		halfW := size / 2 / float64(p.CanvasSize[0]) * float64(cols)
		halfH := size / 2 / float64(p.CanvasSize[1]) * float64(rows)
		cx, cy := n.X*float64(cols), n.Y*float64(rows)
		x0, x1 := int(math.Floor(cx-halfW)), int(math.Ceil(cx+halfW))
		y0, y1 := int(math.Floor(cy-halfH)), int(math.Ceil(cy+halfH))
		if x1 <= x0 {
			x1 = x0 + 1
		}
		if y1 <= y0 {
			y1 = y0 + 1
		}

		c := cell{kind: cellNode, glyph: '█'}
		if p.ShowImages && n.ImageIndex != nil && *n.ImageIndex >= 0 && *n.ImageIndex < len(p.ImageLibrary) {
			c = cell{kind: cellImage, glyph: rune(imageGlyphs[*n.ImageIndex%len(imageGlyphs)])}
		}
		if n.ID == grabbed {
			c.kind = cellGrabbed
		}
		for y := max(y0, 0); y < min(y1, rows); y++ {
			for x := max(x0, 0); x < min(x1, cols); x++ {
				grid[y][x] = c
			}
		}
	}
	return grid
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	p := m.editor.Project()
	cols, rows := m.gridSize()

	nodeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.NodeColor))
	imageStyle := nodeStyle.Bold(true)

	var result strings.Builder
	if m.mode == ModeFileInput {
		result.WriteString(m.inputView(cols, rows))
	} else {
		grid := renderGrid(p, cols, rows, m.grabbedNode)
		for y, line := range grid {
			for x, c := range line {
				if x == m.cursorX && y == m.cursorY && !p.IsPlaying {
					glyph := "+"
					if c.kind != cellEmpty {
						glyph = string(c.glyph)
					}
					result.WriteString(cursorStyle.Render(glyph))
					continue
				}
				switch c.kind {
				case cellNode:
					result.WriteString(nodeStyle.Render(string(c.glyph)))
				case cellImage:
					result.WriteString(imageStyle.Render(string(c.glyph)))
				case cellGrabbed:
					result.WriteString(grabStyle.Render(string(c.glyph)))
				default:
					result.WriteString("·")
				}
			}
			result.WriteString("\n")
		}
	}

	result.WriteString(statusStyle.Render(padRight(m.statusLine(p), cols)))
	result.WriteString("\n")
	switch {
	case m.mode == ModeConfirm:
		result.WriteString(m.confirmPrompt())
	case m.errorMessage != "":
		result.WriteString(errorStyle.Render(m.errorMessage))
	case m.successMessage != "":
		result.WriteString(successStyle.Render(m.successMessage))
	}
	return result.String()
}

func (m model) statusLine(p Project) string {
	undo, redo := "-", "-"
	if m.editor.CanUndo() {
		undo = "u"
	}
	if m.editor.CanRedo() {
		redo = "U"
	}
	state := string(p.DrawMode)
	if p.IsPlaying {
		state = "PLAY"
	} else if m.penDown {
		state += "*"
	}
	nodes := 0
	if f, ok := p.frame(p.CurrentFrameIndex); ok {
		nodes = len(f.Nodes)
	}
	return fmt.Sprintf(" %s | %s | frame %d/%d | %d nodes | size x%.1f | %s | img %d/%d | slot %d | %s%s",
		m.modeString(), state, p.CurrentFrameIndex+1, len(p.Frames), nodes,
		p.NodeSizeMultiplier, p.ImageShuffleType, len(p.ImageLibrary), maxLibrarySize,
		m.editor.CurrentSlot(), undo, redo)
}

func (m model) inputView(cols, rows int) string {
	labels := map[FileOperation]string{
		FileOpExport:         "Export to (.gif, .png, .json)",
		FileOpImport:         "Import project JSON from",
		FileOpRename:         "Project name",
		FileOpAddImage:       "Add library image (path or URL)",
		FileOpReference:      "Reference image for this frame (empty clears)",
		FileOpClipBackground: "Clip background image (empty clears)",
	}
	var b strings.Builder
	b.WriteString("Projects:\n")
	for _, info := range m.editor.ProjectsList() {
		marker := "  "
		if info.Slot == m.editor.CurrentSlot() {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%d. %s\n", marker, info.Slot, info.Name)
	}
	b.WriteString(strings.Repeat("─", cols))
	b.WriteString("\n")
	b.WriteString(labels[m.fileOp])
	b.WriteString(": ")
	b.WriteString(m.filename)
	b.WriteString("█")
	used := slotCount + 3
	for i := used; i < rows; i++ {
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m model) confirmPrompt() string {
	switch m.confirmAction {
	case ConfirmQuit:
		return "Quit? (y/n)"
	case ConfirmNewProject:
		return "Create a new project? (y/n)"
	case ConfirmDeleteProject:
		return fmt.Sprintf("Delete %q? This cannot be undone. (y/n)", m.editor.Project().Name)
	case ConfirmClearFrame:
		return "Clear all nodes on this frame? (y/n)"
	case ConfirmOverwriteFile:
		return fmt.Sprintf("Overwrite %s? (y/n)", m.pendingPath)
	}
	return "(y/n)"
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModeFileInput:
		return "INPUT"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func (m model) helpView() string {
	helpLines := []string{
		"stampflip help",
		"==============",
		"",
		"Cursor:",
		"  h/←/j/↓/k/↑/l/→  Move cursor",
		"  Shift+h/j/k/l    Move cursor 2x faster",
		"",
		"Drawing:",
		"  tab              Cycle draw mode (Freehand, Stamp, Edit)",
		"  space            Freehand: pen down/up   Stamp: place node",
		"                   Edit: grab/drop node under cursor",
		"  esc              End stroke or drop grabbed node",
		"  d                Edit: delete node under cursor",
		"  +/-              Node size multiplier (0.2 to 3.0)",
		"  u / U            Undo / redo node edits",
		"",
		"Frames:",
		"  [ / ]            Previous / next frame",
		"  a / X / D        Add / remove / duplicate frame",
		"  < / >            Move frame left / right",
		"  C                Clear nodes on this frame",
		"  p                Play / pause",
		"  b                Set reference image",
		"  ( / )            Reference opacity down / up",
		"",
		"Images:",
		"  I / x            Add image / remove last image",
		"  s                Cycle shuffle policy",
		"  i                Toggle images",
		"  c / B            Toggle clip mode / set clip background",
		"",
		"Projects:",
		"  1/2/3            Switch slot",
		"  N                New project",
		"  ctrl+x           Delete project",
		"  r                Rename project",
		"  e                Export (.gif, .png, .json)",
		"  o                Import JSON file",
		"  y / ctrl+v       Copy JSON to / import from clipboard",
		"  q                Quit",
	}
	_, rows := m.gridSize()
	start := m.helpScroll
	if start > len(helpLines)-1 {
		start = len(helpLines) - 1
	}
	end := min(start+rows+1, len(helpLines))
	return strings.Join(helpLines[start:end], "\n")
}
