package core

import "fmt"

type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

// Name returns the long form used in wire payloads ("white" or "black")
func (c Color) Name() string {
	if c == ColorBlack {
		return "black"
	}
	return "white"
}

// ParseColor accepts "w", "white", "b" or "black"
func ParseColor(s string) (Color, error) {
	switch s {
	case "w", "white", "W", "White":
		return ColorWhite, nil
	case "b", "black", "B", "Black":
		return ColorBlack, nil
	}
	return 0, fmt.Errorf("invalid color %q: expected white or black", s)
}

// Origin tags where a move came from. Only human moves are submitted to the
// move service; remote moves are terminal.
type Origin int

const (
	OriginHuman Origin = iota + 1
	OriginRemote
)

func (o Origin) String() string {
	switch o {
	case OriginHuman:
		return "human"
	case OriginRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// PieceKind is a promotion target in lowercase UCI form
type PieceKind byte

const (
	NoPiece PieceKind = 0
	Queen   PieceKind = 'q'
	Rook    PieceKind = 'r'
	Bishop  PieceKind = 'b'
	Knight  PieceKind = 'n'
)

func (p PieceKind) String() string {
	if p == NoPiece {
		return ""
	}
	return string(p)
}

// Valid reports whether p is a legal promotion target
func (p PieceKind) Valid() bool {
	switch p {
	case Queen, Rook, Bishop, Knight:
		return true
	}
	return false
}

// ParsePieceKind accepts a single letter or the full piece name
func ParsePieceKind(s string) (PieceKind, error) {
	switch s {
	case "q", "Q", "queen":
		return Queen, nil
	case "r", "R", "rook":
		return Rook, nil
	case "b", "B", "bishop":
		return Bishop, nil
	case "n", "N", "knight":
		return Knight, nil
	}
	return NoPiece, fmt.Errorf("%w: %q", ErrInvalidPiece, s)
}

// Move is a fully specified move ready for the rules engine
type Move struct {
	From      string
	To        string
	Promotion PieceKind
	Origin    Origin
}

// UCI returns the move in long algebraic form, e.g. "e7e8q"
func (m Move) UCI() string {
	return m.From + m.To + m.Promotion.String()
}

func (m Move) String() string {
	return fmt.Sprintf("%s (%s)", m.UCI(), m.Origin)
}

// RequestStatus is the synchronization state shown to the presentation layer
type RequestStatus int

const (
	StatusIdle RequestStatus = iota
	StatusLoading
	StatusError
)

func (s RequestStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}
