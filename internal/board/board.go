package board

import (
	"fmt"
	"strings"

	"chessbot/internal/core"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Board is a read-only view of a FEN string: piece placement plus side to move.
// Uppercase bytes are white pieces, lowercase black, zero is empty.
type Board struct {
	squares [8][8]byte
	turn    core.Color
}

func ParseFEN(fen string) (*Board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid FEN: expected at least 4 fields, got %d", len(parts))
	}

	b := &Board{}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("invalid FEN: expected 8 ranks")
	}

	for r := 0; r < 8; r++ {
		file := 0
		for _, ch := range ranks[r] {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if !strings.ContainsRune("pnbrqkPNBRQK", ch) {
				return nil, fmt.Errorf("invalid FEN: unknown piece %q in rank %d", ch, 8-r)
			}
			if file >= 8 {
				return nil, fmt.Errorf("invalid FEN: too many pieces in rank %d", 8-r)
			}
			b.squares[r][file] = byte(ch)
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("invalid FEN: rank %d has %d files", 8-r, file)
		}
	}

	switch parts[1] {
	case "w":
		b.turn = core.ColorWhite
	case "b":
		b.turn = core.ColorBlack
	default:
		return nil, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
	}

	return b, nil
}

func (b *Board) Turn() core.Color {
	return b.turn
}

// PieceAt returns the FEN letter on square ("e4"), or 0 if empty or off-board
func (b *Board) PieceAt(square string) byte {
	file, rank, ok := SquareIndex(square)
	if !ok {
		return 0
	}
	return b.squares[rank][file]
}

// ColorAt reports the color of the piece on square
func (b *Board) ColorAt(square string) (core.Color, bool) {
	p := b.PieceAt(square)
	switch {
	case p == 0:
		return 0, false
	case p >= 'A' && p <= 'Z':
		return core.ColorWhite, true
	default:
		return core.ColorBlack, true
	}
}

// SquareIndex maps "a8".."h1" onto array coordinates, rank 0 being the eighth rank
func SquareIndex(square string) (file, rank int, ok bool) {
	if len(square) != 2 {
		return 0, 0, false
	}
	if square[0] < 'a' || square[0] > 'h' || square[1] < '1' || square[1] > '8' {
		return 0, 0, false
	}
	return int(square[0] - 'a'), int('8' - square[1]), true
}

// ValidSquare reports whether s names a board square
func ValidSquare(s string) bool {
	_, _, ok := SquareIndex(s)
	return ok
}

// ToASCII creates an ASCII representation of the board. With flip set the board
// is drawn from black's side.
func (b *Board) ToASCII(flip bool) string {
	files := "  a b c d e f g h"
	if flip {
		files = "  h g f e d c b a"
	}

	var sb strings.Builder
	sb.WriteString(files + "\n")

	for i := 0; i < 8; i++ {
		r := i
		if flip {
			r = 7 - i
		}
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for j := 0; j < 8; j++ {
			f := j
			if flip {
				f = 7 - j
			}
			piece := b.squares[r][f]
			if piece == 0 {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", piece))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString(files)

	return sb.String()
}
