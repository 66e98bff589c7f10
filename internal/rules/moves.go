package rules

import (
	"chessbot/internal/core"

	"github.com/notnil/chess"
)

// Flags describe a verbose legal move
type Flags uint8

const (
	FlagCapture Flags = 1 << iota
	FlagEnPassant
	FlagKingsideCastle
	FlagQueensideCastle
	FlagPromotion
	FlagBigPawn
)

func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

func (f Flags) IsCastle() bool {
	return f.Has(FlagKingsideCastle) || f.Has(FlagQueensideCastle)
}

// LegalMove is one enumerated legal move with its metadata
type LegalMove struct {
	From      string
	To        string
	Promotion core.PieceKind
	Flags     Flags
	SAN       string
}

// Move converts the legal move into a move tagged with origin
func (l LegalMove) Move(origin core.Origin) core.Move {
	return core.Move{From: l.From, To: l.To, Promotion: l.Promotion, Origin: origin}
}

// LegalMoves enumerates the legal moves of the snapshot. The list is rebuilt on
// every call.
func (p Position) LegalMoves() []LegalMove {
	pos := p.game().Position()
	valid := pos.ValidMoves()
	san := chess.AlgebraicNotation{}

	out := make([]LegalMove, 0, len(valid))
	for _, m := range valid {
		out = append(out, LegalMove{
			From:      m.S1().String(),
			To:        m.S2().String(),
			Promotion: promoKind(m.Promo()),
			Flags:     moveFlags(pos, m),
			SAN:       san.Encode(pos, m),
		})
	}
	return out
}

// ValidMoveSANs lists the legal moves in SAN, in engine order
func (p Position) ValidMoveSANs() []string {
	moves := p.LegalMoves()
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.SAN)
	}
	return out
}

// Find returns the first legal move from -> to
func (p Position) Find(from, to string) (LegalMove, bool) {
	for _, m := range p.LegalMoves() {
		if m.From == from && m.To == to {
			return m, true
		}
	}
	return LegalMove{}, false
}

func moveFlags(pos *chess.Position, m *chess.Move) Flags {
	var f Flags
	if m.HasTag(chess.Capture) {
		f |= FlagCapture
	}
	if m.HasTag(chess.EnPassant) {
		f |= FlagEnPassant | FlagCapture
	}
	if m.HasTag(chess.KingSideCastle) {
		f |= FlagKingsideCastle
	}
	if m.HasTag(chess.QueenSideCastle) {
		f |= FlagQueensideCastle
	}
	if m.Promo() != chess.NoPieceType {
		f |= FlagPromotion
	}
	if pos.Board().Piece(m.S1()).Type() == chess.Pawn {
		d := int(m.S2()) - int(m.S1())
		if d == 16 || d == -16 {
			f |= FlagBigPawn
		}
	}
	return f
}

func promoKind(t chess.PieceType) core.PieceKind {
	switch t {
	case chess.Queen:
		return core.Queen
	case chess.Rook:
		return core.Rook
	case chess.Bishop:
		return core.Bishop
	case chess.Knight:
		return core.Knight
	}
	return core.NoPiece
}
