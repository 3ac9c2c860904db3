package scanner

import "fmt"

// Phase is the recognition lifecycle position of a scan.
type Phase int

const (
	// Sense: no valid candidate in the frame.
	Sense Phase = iota
	// Recognize: a candidate is present but not yet confirmed.
	Recognize
	// Communicate: the candidate was seen in enough consecutive frames.
	Communicate
)

func (p Phase) String() string {
	switch p {
	case Sense:
		return "sense"
	case Recognize:
		return "recognize"
	case Communicate:
		return "communicate"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is emitted once per processed frame. Value is empty for Sense.
type State struct {
	Phase Phase
	Value string
}

func SenseState() State                   { return State{Phase: Sense} }
func RecognizeState(value string) State   { return State{Phase: Recognize, Value: value} }
func CommunicateState(value string) State { return State{Phase: Communicate, Value: value} }

func (s State) String() string {
	if s.Phase == Sense {
		return s.Phase.String()
	}
	return fmt.Sprintf("%s(%s)", s.Phase, s.Value)
}
