package interaction

import "fmt"

// Mode is the tool that decides how pointer input is interpreted.
type Mode int

const (
	ModeMove    Mode = iota // Drag nodes, pan on empty canvas
	ModeAdd                 // Tap empty canvas to add a node
	ModeConnect             // Tap two nodes to connect them
	ModeDelete              // Tap a node to remove it
	ModePan                 // Drag anywhere to pan
)

// String returns the mode name for display
func (m Mode) String() string {
	switch m {
	case ModeMove:
		return "MOVE"
	case ModeAdd:
		return "ADD"
	case ModeConnect:
		return "CONNECT"
	case ModeDelete:
		return "DELETE"
	case ModePan:
		return "PAN"
	default:
		return "UNKNOWN"
	}
}

// ParseMode converts a tool name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "move", "m":
		return ModeMove, nil
	case "add", "a":
		return ModeAdd, nil
	case "connect", "c":
		return ModeConnect, nil
	case "delete", "d":
		return ModeDelete, nil
	case "pan", "p":
		return ModePan, nil
	default:
		return ModeMove, fmt.Errorf("unknown tool mode: %s", s)
	}
}
