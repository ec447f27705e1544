package frame

import (
	"fmt"
)

// State is the decoding state of a Frame.
//
//	Empty -> Ready -> Decoded
//	              \-> Failed
type State int32

const (
	// StateEmpty means no output buffer is assigned yet.
	StateEmpty = State(iota)

	// StateReady means a buffer is assigned and the frame may be decoded.
	StateReady

	// StateDecoded is terminal: the buffer holds the DXT texture.
	StateDecoded

	// StateFailed is terminal: the buffer content is undefined.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	case StateDecoded:
		return "decoded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

func (s State) IsTerminal() bool {
	return s == StateDecoded || s == StateFailed
}
