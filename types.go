package main

import "log/slog"

type model struct {
	width          int
	height         int
	cursorX        int
	cursorY        int
	editor         *Editor
	config         *Config
	log            *slog.Logger
	loader         ImageLoader
	mode           Mode
	help           bool
	helpScroll     int
	fileOp         FileOperation
	filename       string
	confirmAction  ConfirmAction
	pendingPath    string
	penDown        bool
	lastPenX       float64
	lastPenY       float64
	grabbedNode    string
	playGen        int
	errorMessage   string
	successMessage string
}

type point struct {
	X, Y float64
}

// playTickMsg advances playback. Ticks from an earlier play/pause cycle
// carry an older gen and are dropped.
type playTickMsg struct {
	gen int
}

type exportDoneMsg struct {
	path string
	err  error
}
