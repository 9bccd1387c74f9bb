package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpExport FileOperation = iota
	FileOpImport
	FileOpRename
	FileOpAddImage
	FileOpReference
	FileOpClipBackground
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmNewProject
	ConfirmDeleteProject
	ConfirmClearFrame
	ConfirmOverwriteFile
)

// DrawMode selects how pointer input edits the current frame.
type DrawMode string

const (
	DrawFreehand DrawMode = "Freehand"
	DrawStamp    DrawMode = "Stamp"
	DrawEdit     DrawMode = "Edit"
)

var drawModes = []DrawMode{DrawFreehand, DrawStamp, DrawEdit}

// ShuffleType is the policy used to pick a library image for a node.
type ShuffleType string

const (
	ShuffleDuplicateRepeats ShuffleType = "Duplicate Repeats"
	ShuffleRandom           ShuffleType = "Random"
	ShuffleSequential       ShuffleType = "Sequential"
)

var shuffleTypes = []ShuffleType{ShuffleDuplicateRepeats, ShuffleRandom, ShuffleSequential}

const (
	maxHistorySize  = 50
	maxLibrarySize  = 20
	slotCount       = 3
	defaultFrames   = 5
	untitledName    = "Untitled"
	emptySlotName   = "Empty"
	randomShuffleK  = 7919
	minSizeMult     = 0.2
	maxSizeMult     = 3.0
	defaultOpacity  = 100
	slotsStorageKey = "nodes-project-slots"
	currentSlotKey  = "nodes-current-slot"
)
