package tui

type Mode int

const (
	ModeNormal Mode = iota
	ModeEditing
	ModeResize
	ModeMove
	ModeConnect
	ModeMultiSelect
	ModeFileInput
	ModeConfirm
)

var modeNames = [...]string{"NORMAL", "EDIT", "RESIZE", "MOVE", "CONNECT", "SELECT", "FILE", "CONFIRM"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "?"
	}
	return modeNames[m]
}

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpSavePNG
	FileOpSaveVisualTXT
	FileOpOpen
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmNewChart
	ConfirmOverwriteFile
)

// Sizes of a new node in terminal cells.
const (
	minBoxWidth    = 8
	minBoxHeight   = 3
	newBoxWidth    = 14
	newGroupWidth  = 36
	newGroupHeight = 9

	// Port type shared by every handle the editor registers.
	portType = "flow"
)
