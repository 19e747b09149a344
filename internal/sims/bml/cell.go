package bml

// Tag is the occupancy of a single cell.
type Tag uint8

const (
	Empty Tag = iota
	Horizontal
	Vertical
)

func (t Tag) String() string {
	switch t {
	case Empty:
		return "empty"
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "invalid"
	}
}

// rune returns the single-character form used by Grid.String and ParseGrid.
func (t Tag) rune() byte {
	switch t {
	case Horizontal:
		return 'H'
	case Vertical:
		return 'V'
	default:
		return '.'
	}
}

// Phase selects which car species moves during a tick.
type Phase uint8

const (
	PhaseHorizontal Phase = iota
	PhaseVertical
)

func (p Phase) String() string {
	if p == PhaseHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// Mover is the car species that advances during the phase.
func (p Phase) Mover() Tag {
	if p == PhaseHorizontal {
		return Horizontal
	}
	return Vertical
}
