// Package rules adapts third-party chess rules engines to immutable position
// snapshots. A Position carries only its FEN; every query decodes a fresh engine
// state, so a Position can be shared freely between goroutines.
package rules

import (
	"fmt"

	"chessbot/internal/board"
	"chessbot/internal/core"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
)

type Position struct {
	fen string
}

// Initial returns the standard starting position
func Initial() Position {
	return Position{fen: chess.NewGame().Position().String()}
}

// ParsePosition validates fen with the rules engine and returns it in canonical form
func ParsePosition(fen string) (Position, error) {
	g, err := gameFromFEN(fen)
	if err != nil {
		return Position{}, err
	}
	return Position{fen: g.Position().String()}, nil
}

func gameFromFEN(fen string) (*chess.Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", fen, err)
	}
	return chess.NewGame(opt), nil
}

// game decodes the snapshot. The FEN was produced by the engine, so decoding
// only fails for the zero Position.
func (p Position) game() *chess.Game {
	if p.fen == "" {
		return chess.NewGame()
	}
	g, err := gameFromFEN(p.fen)
	if err != nil {
		return chess.NewGame()
	}
	return g
}

func (p Position) FEN() string {
	if p.fen == "" {
		return Initial().fen
	}
	return p.fen
}

func (p Position) String() string {
	return p.FEN()
}

func (p Position) IsZero() bool {
	return p.fen == ""
}

func (p Position) Equal(o Position) bool {
	return p.FEN() == o.FEN()
}

func (p Position) Turn() core.Color {
	if p.game().Position().Turn() == chess.Black {
		return core.ColorBlack
	}
	return core.ColorWhite
}

// Board returns the piece placement view of the snapshot
func (p Position) Board() *board.Board {
	b, err := board.ParseFEN(p.FEN())
	if err != nil {
		b, _ = board.ParseFEN(board.StartingFEN)
	}
	return b
}

// PieceAt returns the FEN letter on square, or 0 when empty
func (p Position) PieceAt(square string) byte {
	return p.Board().PieceAt(square)
}

// IsCheck reports whether the side to move is in check. notnil/chess only tags
// check on the move that delivered it, so the predicate is taken from
// dragontoothmg's bitboards, which work from any FEN.
func (p Position) IsCheck() (inCheck bool) {
	defer func() {
		if r := recover(); r != nil {
			inCheck = false
		}
	}()
	b := dragontoothmg.ParseFen(p.FEN())
	return b.OurKingInCheck()
}

func (p Position) IsCheckmate() bool {
	return p.game().Position().Status() == chess.Checkmate
}

func (p Position) IsStalemate() bool {
	return p.game().Position().Status() == chess.Stalemate
}

// IsGameOver covers the positions that end the game by rule on the board
func (p Position) IsGameOver() bool {
	switch p.game().Position().Status() {
	case chess.Checkmate, chess.Stalemate:
		return true
	}
	return false
}

// Result describes a finished position, empty while the game goes on
func (p Position) Result() string {
	switch p.game().Position().Status() {
	case chess.Checkmate:
		winner := "White"
		if p.Turn() == core.ColorWhite {
			winner = "Black"
		}
		return fmt.Sprintf("Checkmate! %s wins!", winner)
	case chess.Stalemate:
		return "Stalemate! Game is a draw."
	}
	return ""
}

// Apply plays m and returns the resulting snapshot. The receiver is untouched.
func (p Position) Apply(m core.Move) (Position, error) {
	g := p.game()

	var match *chess.Move
	for _, cand := range g.ValidMoves() {
		if cand.S1().String() == m.From && cand.S2().String() == m.To && promoKind(cand.Promo()) == m.Promotion {
			match = cand
			break
		}
	}
	if match == nil {
		return p, fmt.Errorf("%w: %s in %s", core.ErrIllegalMove, m.UCI(), p.FEN())
	}

	if err := g.Move(match); err != nil {
		return p, fmt.Errorf("%w: %v", core.ErrIllegalMove, err)
	}
	return Position{fen: g.Position().String()}, nil
}
