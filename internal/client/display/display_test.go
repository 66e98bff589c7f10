package display

import (
	"bytes"
	"strings"
	"testing"

	"chessbot/internal/board"
	"chessbot/internal/gesture"
	"chessbot/internal/session"
)

func init() {
	DisableColors()
}

func TestRenderBoardPlain(t *testing.T) {
	b, err := board.ParseFEN(board.StartingFEN)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ascii := b.ToASCII(false)
	var buf bytes.Buffer
	RenderBoard(&buf, ascii)
	if strings.TrimSpace(buf.String()) != strings.TrimSpace(ascii) {
		t.Fatalf("uncolored render should match the ASCII board:\n%s\nvs\n%s", buf.String(), ascii)
	}
}

func TestRenderStatus(t *testing.T) {
	var buf bytes.Buffer
	RenderStatus(&buf, session.RenderState{
		PlayerColor:      "white",
		Turn:             "white",
		IsCheck:          true,
		Error:            "move service returned 500",
		CanRetry:         true,
		PendingPromotion: &gesture.PendingPromotion{From: "a7", To: "a8"},
	})
	out := buf.String()
	for _, want := range []string{"You: White", "check", "a7a8 pending", "Error: move service returned 500", "retry"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status missing %q:\n%s", want, out)
		}
	}
}

func TestColorForTurn(t *testing.T) {
	if ColorForTurn("w") != "White" || ColorForTurn("black") != "Black" {
		t.Fatalf("unexpected turn labels")
	}
}
