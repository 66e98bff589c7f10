package board

import (
	"strings"
	"testing"

	"chessbot/internal/core"
)

func TestParseFENStartingPosition(t *testing.T) {
	b, err := ParseFEN(StartingFEN)
	if err != nil {
		t.Fatalf("parse starting FEN: %v", err)
	}
	if b.Turn() != core.ColorWhite {
		t.Fatalf("expected white to move, got %s", b.Turn())
	}

	cases := map[string]byte{"e1": 'K', "h1": 'R', "a8": 'r', "e8": 'k', "e2": 'P', "e4": 0}
	for sq, want := range cases {
		if got := b.PieceAt(sq); got != want {
			t.Fatalf("PieceAt(%s) = %q, want %q", sq, got, want)
		}
	}

	if c, ok := b.ColorAt("d8"); !ok || c != core.ColorBlack {
		t.Fatalf("expected black piece on d8")
	}
	if _, ok := b.ColorAt("d4"); ok {
		t.Fatalf("expected d4 empty")
	}
}

func TestParseFENRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq -",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq -",
		"rnbqkbnx/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); err == nil {
			t.Fatalf("expected error for %q", fen)
		}
	}
}

func TestPieceAtOffBoard(t *testing.T) {
	b, _ := ParseFEN(StartingFEN)
	for _, sq := range []string{"", "i1", "a9", "e10", "E2"} {
		if b.PieceAt(sq) != 0 {
			t.Fatalf("expected no piece for %q", sq)
		}
	}
}

func TestToASCIIFlip(t *testing.T) {
	b, _ := ParseFEN(StartingFEN)

	white := strings.Split(b.ToASCII(false), "\n")
	if !strings.HasPrefix(white[1], "8 r n b q k b n r") {
		t.Fatalf("unexpected first rank line %q", white[1])
	}

	black := strings.Split(b.ToASCII(true), "\n")
	if !strings.HasPrefix(black[0], "  h g f") {
		t.Fatalf("flipped board should list files from h, got %q", black[0])
	}
	if !strings.HasPrefix(black[1], "1 R N B K Q B N R") {
		t.Fatalf("unexpected flipped first line %q", black[1])
	}
}
