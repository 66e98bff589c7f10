// Package gesture turns raw drag-and-drop square pairs into fully specified
// moves. A king dropped onto its own rook becomes the canonical castling move,
// and promoting drops are deferred until a piece is chosen.
package gesture

import (
	"fmt"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/rules"
)

// PendingPromotion holds a promoting drop until the user picks a piece
type PendingPromotion struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result is exactly one of a finalized move or a pending promotion
type Result struct {
	Move    *core.Move
	Pending *PendingPromotion
}

// Resolve maps (from, to) in pos onto a legal move. A nil error with a nil Move
// means a promotion is pending.
func Resolve(pos rules.Position, from, to string) (Result, error) {
	if !board.ValidSquare(from) || !board.ValidSquare(to) {
		return Result{}, fmt.Errorf("%w: bad squares %q -> %q", core.ErrIllegalMove, from, to)
	}

	if dest, ok := castlingTarget(pos.Board(), from, to); ok {
		lm, found := pos.Find(from, dest)
		if !found || !lm.Flags.IsCastle() {
			return Result{}, fmt.Errorf("%w: cannot castle %s -> %s", core.ErrIllegalMove, from, to)
		}
		m := lm.Move(core.OriginHuman)
		return Result{Move: &m}, nil
	}

	lm, found := pos.Find(from, to)
	if !found {
		return Result{}, fmt.Errorf("%w: %s%s", core.ErrIllegalMove, from, to)
	}

	if lm.Flags.Has(rules.FlagPromotion) {
		return Result{Pending: &PendingPromotion{From: from, To: to}}, nil
	}

	m := lm.Move(core.OriginHuman)
	return Result{Move: &m}, nil
}

// ResolvePromotion finalizes a pending promotion with the chosen piece
func ResolvePromotion(pos rules.Position, pending PendingPromotion, kind core.PieceKind) (core.Move, error) {
	if !kind.Valid() {
		return core.Move{}, fmt.Errorf("%w: %q", core.ErrInvalidPiece, kind.String())
	}
	for _, lm := range pos.LegalMoves() {
		if lm.From == pending.From && lm.To == pending.To && lm.Promotion == kind {
			return lm.Move(core.OriginHuman), nil
		}
	}
	return core.Move{}, fmt.Errorf("%w: %s%s%s", core.ErrIllegalMove, pending.From, pending.To, kind)
}

// castlingTarget recognizes a king dropped onto a rook of its own color on the
// home rank corner and returns the king's castling destination.
func castlingTarget(b *board.Board, from, to string) (string, bool) {
	king := b.PieceAt(from)
	rook := b.PieceAt(to)

	var home byte
	switch {
	case king == 'K' && rook == 'R':
		home = '1'
	case king == 'k' && rook == 'r':
		home = '8'
	default:
		return "", false
	}

	if from[1] != home || to[1] != home {
		return "", false
	}
	switch to[0] {
	case 'h':
		return string([]byte{'g', home}), true
	case 'a':
		return string([]byte{'c', home}), true
	}
	return "", false
}
