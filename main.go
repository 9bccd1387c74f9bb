package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	config := loadConfig()
	logger, closer, err := config.newLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	storage, err := openSQLiteStorage(config.StoragePath, WithMkdirAll())
	if err != nil {
		log.Fatal(err)
	}
	defer storage.Close()

	editor := newEditor(storage, withLogger(logger))
	p := tea.NewProgram(
		initialModel(editor, config, logger),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

func initialModel(editor *Editor, config *Config, logger *slog.Logger) model {
	return model{
		editor: editor,
		config: config,
		log:    logger,
		loader: sourceLoader{},
		mode:   ModeNormal,
		width:  80,
		height: 24,
	}
}

func (m model) Init() tea.Cmd {
	if m.editor.Project().IsPlaying {
		return m.playTick()
	}
	return nil
}

func (m model) playTick() tea.Cmd {
	delay := time.Duration(frameDelayMS(m.editor.Project()) * float64(time.Millisecond))
	gen := m.playGen
	return tea.Tick(delay, func(time.Time) tea.Msg { return playTickMsg{gen: gen} })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInBounds()
		return m, nil

	case playTickMsg:
		p := m.editor.Project()
		if msg.gen != m.playGen || !p.IsPlaying || len(p.Frames) == 0 {
			return m, nil
		}
		m.editor.SetCurrentFrame((p.CurrentFrameIndex + 1) % len(p.Frames))
		return m, m.playTick()

	case exportDoneMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.successMessage = "Exported " + msg.path
		}
		return m, nil

	case tea.KeyMsg:
		m.errorMessage = ""
		m.successMessage = ""
		if m.help {
			return m.handleHelpKey(msg.String())
		}
		switch m.mode {
		case ModeFileInput:
			return m.handleInputKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg.String())
		}
		return m.handleNormalKey(msg.String())
	}
	return m, nil
}

func (m model) handleHelpKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		m.helpScroll++
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	}
	return m, nil
}

func (m model) handleNormalKey(key string) (tea.Model, tea.Cmd) {
	e := m.editor
	p := e.Project()
	frame := p.CurrentFrameIndex

	switch key {
	case "h", "j", "k", "l", "left", "right", "up", "down",
		"H", "J", "K", "L", "shift+left", "shift+right", "shift+up", "shift+down":
		return m.handleNavigation(key, m.getMoveSpeed(key))
	case "?":
		m.help = true
		return m, nil
	case "q", "ctrl+c":
		if m.config.Confirmations {
			return m.confirm(ConfirmQuit), nil
		}
		m.finishGesture()
		return m, tea.Quit
	case "p":
		m.finishGesture()
		e.SetIsPlaying(!p.IsPlaying)
		m.playGen++
		if !p.IsPlaying {
			return m, m.playTick()
		}
		return m, nil
	case "[":
		m.setFrame(frame - 1)
		return m, nil
	case "]":
		m.setFrame(frame + 1)
		return m, nil
	case "1", "2", "3":
		m.finishGesture()
		e.SwitchSlot(int(key[0] - '0'))
		m.successMessage = fmt.Sprintf("Slot %s: %s", key, e.Project().Name)
		return m, nil
	case "esc":
		m.finishGesture()
		return m, nil
	}

	if p.IsPlaying {
		m.errorMessage = "Pause playback (p) to edit"
		return m, nil
	}

	switch key {
	case " ":
		m.handlePlace(p)
	case "tab":
		m.finishGesture()
		next := drawModes[(indexOf(drawModes, p.DrawMode)+1)%len(drawModes)]
		e.UpdateSettings(Settings{DrawMode: &next})
	case "d", "delete", "backspace":
		pt := m.cursorPoint()
		if n, ok := p.nodeAt(frame, pt.X, pt.Y, float64(p.CanvasSize[0]), float64(p.CanvasSize[1])); ok && p.DrawMode == DrawEdit {
			if n.ID == m.grabbedNode {
				m.grabbedNode = ""
			}
			e.RemoveNode(frame, n.ID)
		}
	case "u":
		m.finishGesture()
		e.Undo()
	case "U", "ctrl+r":
		m.finishGesture()
		e.Redo()
	case "a":
		m.finishGesture()
		e.AddFrame()
	case "X":
		m.finishGesture()
		e.RemoveFrame(frame)
	case "D":
		m.finishGesture()
		e.DuplicateFrame(frame)
	case "<":
		m.finishGesture()
		e.ReorderFrames(frame, frame-1)
	case ">":
		m.finishGesture()
		e.ReorderFrames(frame, frame+1)
	case "C":
		m.finishGesture()
		if m.config.Confirmations {
			return m.confirm(ConfirmClearFrame), nil
		}
		e.ClearFrameNodes(frame)
	case "s":
		next := shuffleTypes[(indexOf(shuffleTypes, p.ImageShuffleType)+1)%len(shuffleTypes)]
		e.UpdateSettings(Settings{ImageShuffleType: &next})
		m.successMessage = "Shuffle: " + string(next)
	case "+", "=":
		e.SetNodeSizeMultiplier(clamp(p.NodeSizeMultiplier+0.1, minSizeMult, maxSizeMult))
	case "-", "_":
		e.SetNodeSizeMultiplier(clamp(p.NodeSizeMultiplier-0.1, minSizeMult, maxSizeMult))
	case "(":
		if f, ok := p.frame(frame); ok {
			e.UpdateFrameReferenceOpacity(frame, clamp(f.ReferenceOpacity-10, 10, 100))
		}
	case ")":
		if f, ok := p.frame(frame); ok {
			e.UpdateFrameReferenceOpacity(frame, clamp(f.ReferenceOpacity+10, 10, 100))
		}
	case "i":
		show := !p.ShowImages
		e.UpdateSettings(Settings{ShowImages: &show})
	case "c":
		clip := !p.ClipMode
		e.UpdateSettings(Settings{ClipMode: &clip})
	case "N":
		m.finishGesture()
		if m.config.Confirmations {
			return m.confirm(ConfirmNewProject), nil
		}
		e.CreateNewProject("")
	case "ctrl+x":
		m.finishGesture()
		if m.config.Confirmations {
			return m.confirm(ConfirmDeleteProject), nil
		}
		e.DeleteCurrentProject()
	case "e":
		m.finishGesture()
		return m.prompt(FileOpExport, sanitizeFilename(p.Name)+".gif"), nil
	case "o":
		m.finishGesture()
		return m.prompt(FileOpImport, ""), nil
	case "r":
		return m.prompt(FileOpRename, p.Name), nil
	case "I":
		return m.prompt(FileOpAddImage, ""), nil
	case "b":
		return m.prompt(FileOpReference, ""), nil
	case "B":
		return m.prompt(FileOpClipBackground, ""), nil
	case "x":
		if n := len(p.ImageLibrary); n > 0 {
			e.RemoveLibraryImage(n - 1)
		}
	case "y":
		data, err := e.ExportJSON()
		if err == nil {
			err = writeClipboardText(string(data))
		}
		if err != nil {
			m.errorMessage = fmt.Sprintf("Copy failed: %v", err)
		} else {
			m.successMessage = "Project JSON copied to clipboard"
		}
	case "ctrl+v":
		m.finishGesture()
		text, err := readClipboardText()
		if err == nil {
			err = e.ImportProject([]byte(cleanClipboardText(text)))
		}
		if err != nil {
			m.errorMessage = fmt.Sprintf("Paste failed: %v", err)
		} else {
			m.successMessage = "Imported project from clipboard"
		}
	}
	return m, nil
}

// handlePlace acts on space: toggles the freehand pen, stamps a node, or
// grabs and releases the node under the cursor.
func (m *model) handlePlace(p Project) {
	pt := m.cursorPoint()
	frame := p.CurrentFrameIndex
	switch p.DrawMode {
	case DrawFreehand:
		if m.penDown {
			m.finishGesture()
			return
		}
		m.penDown = true
		m.lastPenX, m.lastPenY = pt.X, pt.Y
		m.editor.AddNode(frame, pt.X, pt.Y, true)
	case DrawStamp:
		m.editor.AddNode(frame, pt.X, pt.Y, true)
	case DrawEdit:
		if m.grabbedNode != "" {
			m.finishGesture()
			return
		}
		if n, ok := p.nodeAt(frame, pt.X, pt.Y, float64(p.CanvasSize[0]), float64(p.CanvasSize[1])); ok {
			m.grabbedNode = n.ID
		}
	}
}

func (m model) prompt(op FileOperation, initial string) model {
	m.mode = ModeFileInput
	m.fileOp = op
	m.filename = initial
	return m
}

func (m model) confirm(action ConfirmAction) model {
	m.mode = ModeConfirm
	m.confirmAction = action
	return m
}

func (m model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.filename = ""
		return m, nil
	case tea.KeyEnter:
		m.mode = ModeNormal
		return m.submitInput(strings.TrimSpace(m.filename))
	case tea.KeyBackspace:
		if r := []rune(m.filename); len(r) > 0 {
			m.filename = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeySpace:
		m.filename += " "
		return m, nil
	case tea.KeyRunes:
		m.filename += string(msg.Runes)
	}
	return m, nil
}

func (m model) submitInput(value string) (tea.Model, tea.Cmd) {
	e := m.editor
	p := e.Project()
	switch m.fileOp {
	case FileOpRename:
		e.UpdateProjectName(value)
	case FileOpExport:
		if value == "" {
			return m, nil
		}
		path := m.config.GetSavePath(value)
		if _, err := os.Stat(path); err == nil && m.config.Confirmations {
			m.pendingPath = path
			return m.confirm(ConfirmOverwriteFile), nil
		}
		return m, m.exportCmd(path)
	case FileOpImport:
		data, err := os.ReadFile(value)
		if err == nil {
			err = e.ImportProject(data)
		}
		if err != nil {
			m.errorMessage = fmt.Sprintf("Import failed: %v", err)
			return m, nil
		}
		m.successMessage = "Imported " + filepath.Base(value)
	case FileOpAddImage:
		src, err := imageSource(value)
		if err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		if !e.AddLibraryImage(src) {
			m.errorMessage = fmt.Sprintf("Image library is full (%d images)", maxLibrarySize)
		}
	case FileOpReference:
		if value == "" {
			e.UpdateFrameReferenceImage(p.CurrentFrameIndex, "")
			return m, nil
		}
		src, err := imageSource(value)
		if err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		e.UpdateFrameReferenceImage(p.CurrentFrameIndex, src)
	case FileOpClipBackground:
		src := ""
		if value != "" {
			var err error
			if src, err = imageSource(value); err != nil {
				m.errorMessage = err.Error()
				return m, nil
			}
		}
		e.UpdateSettings(Settings{ClipBackgroundImage: &src})
	}
	return m, nil
}

// imageSource keeps URLs as given and inlines local files as data URLs.
func imageSource(value string) (string, error) {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "data:") {
		return value, nil
	}
	return fileDataURL(value)
}

func (m model) exportCmd(path string) tea.Cmd {
	p := m.editor.Project()
	opts := exportOptions{loader: m.loader, log: m.log, labelFrames: m.config.LabelFrames}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return exportDoneMsg{path: path, err: exportProject(ctx, path, p, opts)}
	}
}

func (m model) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	if key != "y" && key != "Y" {
		m.mode = ModeNormal
		m.pendingPath = ""
		return m, nil
	}
	m.mode = ModeNormal
	e := m.editor
	switch m.confirmAction {
	case ConfirmQuit:
		m.finishGesture()
		return m, tea.Quit
	case ConfirmNewProject:
		e.CreateNewProject("")
	case ConfirmDeleteProject:
		e.DeleteCurrentProject()
	case ConfirmClearFrame:
		e.ClearFrameNodes(e.Project().CurrentFrameIndex)
	case ConfirmOverwriteFile:
		path := m.pendingPath
		m.pendingPath = ""
		return m, m.exportCmd(path)
	}
	return m, nil
}

func indexOf[T comparable](values []T, v T) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return 0
}

func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "untitled"
	}
	return name
}
