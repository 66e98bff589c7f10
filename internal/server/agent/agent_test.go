package agent

import (
	"testing"

	"chessbot/internal/core"
	"chessbot/internal/rules"
)

func TestNewUnknown(t *testing.T) {
	if _, err := New("alphazero", 1); err == nil {
		t.Fatalf("expected error for unknown agent")
	}
	for _, name := range Names() {
		a, err := New(name, 1)
		if err != nil {
			t.Fatalf("new %s: %v", name, err)
		}
		if a.Name() != name {
			t.Fatalf("name mismatch: %s vs %s", a.Name(), name)
		}
	}
}

// Every agent move must be legal for the rules engine used by the client
func TestAgentsPlayLegalGames(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			a, _ := New(name, 7)
			pos := rules.Initial()
			for ply := 0; ply < 60 && !pos.IsGameOver(); ply++ {
				mv, ok, err := a.SelectMove(pos.FEN())
				if err != nil || !ok {
					t.Fatalf("ply %d: no move (%v) in %s", ply, err, pos.FEN())
				}
				m := core.Move{From: mv[:2], To: mv[2:4], Origin: core.OriginRemote}
				if len(mv) == 5 {
					kind, err := core.ParsePieceKind(mv[4:])
					if err != nil {
						t.Fatalf("bad promotion in %s: %v", mv, err)
					}
					m.Promotion = kind
				}
				next, err := pos.Apply(m)
				if err != nil {
					t.Fatalf("ply %d: %s illegal in %s: %v", ply, mv, pos.FEN(), err)
				}
				pos = next
			}
		})
	}
}

func TestNoMovesInTerminalPosition(t *testing.T) {
	a, _ := New(Random, 1)
	_, ok, err := a.SelectMove("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil || ok {
		t.Fatalf("expected no move in stalemate, got ok=%v err=%v", ok, err)
	}
}

func TestGreedyTakesQueen(t *testing.T) {
	// White rook can take a queen on a7, the king a pawn on h2
	fen := "7k/q7/8/8/8/8/7p/R6K w - - 0 1"
	a, _ := New(Greedy, 3)
	for i := 0; i < 10; i++ {
		mv, ok, err := a.SelectMove(fen)
		if err != nil || !ok {
			t.Fatalf("select: %v", err)
		}
		if mv != "a1a7" {
			t.Fatalf("expected a1a7, got %s", mv)
		}
	}
}

func TestGreedyPromotes(t *testing.T) {
	a, _ := New(Greedy, 5)
	mv, ok, err := a.SelectMove("8/P7/8/8/8/8/8/k6K w - - 0 1")
	if err != nil || !ok {
		t.Fatalf("select: %v", err)
	}
	if mv != "a7a8q" {
		t.Fatalf("expected queen promotion, got %s", mv)
	}
}

func TestInvalidFEN(t *testing.T) {
	a, _ := New(Random, 1)
	if _, ok, err := a.SelectMove("not a fen"); err == nil || ok {
		t.Fatalf("expected error for garbage FEN")
	}
}

func TestMinimaxFindsMate(t *testing.T) {
	// Ra8 is the only mate
	fen := "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"
	for _, name := range []string{Minimax, MinimaxShallow} {
		a, _ := New(name, 11)
		mv, ok, err := a.SelectMove(fen)
		if err != nil || !ok {
			t.Fatalf("%s: select: %v", name, err)
		}
		if mv != "a1a8" {
			t.Fatalf("%s: expected a1a8, got %s", name, mv)
		}
	}
}

func TestMinimaxWinsMaterial(t *testing.T) {
	a, _ := New(MinimaxShallow, 2)
	mv, ok, err := a.SelectMove("7k/q7/8/8/8/8/7p/R6K w - - 0 1")
	if err != nil || !ok || mv != "a1a7" {
		t.Fatalf("expected a1a7, got %s %v %v", mv, ok, err)
	}
}
