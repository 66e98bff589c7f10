package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chessbot/internal/client/display"
	"chessbot/internal/core"
	"chessbot/internal/remote"
	"chessbot/internal/session"

	"github.com/rs/zerolog"
)

func init() {
	display.DisableColors()
}

// replyMover answers every request with a fixed black reply keyed by the
// human's destination square
type replyMover struct {
	replies map[string][2]string
}

func (m *replyMover) RequestMove(ctx context.Context, req *core.MoveRequest) (*core.MoveResponse, error) {
	r, ok := m.replies[req.MoveTo]
	if !ok {
		return &core.MoveResponse{Message: "no reply"}, nil
	}
	return &core.MoveResponse{Message: "ok", NextMove: &core.NextMove{From: r[0], To: r[1]}}, nil
}

func newEnv(t *testing.T, color core.Color, replies map[string][2]string) (*Registry, *Env, *bytes.Buffer) {
	t.Helper()
	game, err := session.New(session.Config{
		PlayerColor: color,
		Mover:       &replyMover{replies: replies},
		Logger:      zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	t.Cleanup(game.Close)

	var out bytes.Buffer
	env := &Env{Game: game, Out: &out}
	return NewRegistry(env), env, &out
}

func TestMoveCommand(t *testing.T) {
	reg, env, out := newEnv(t, core.ColorWhite, map[string][2]string{"e4": {"e7", "e5"}})

	if !reg.Execute("move e2e4") {
		t.Fatalf("move must not exit")
	}
	if strings.Contains(out.String(), "Error") {
		t.Fatalf("unexpected error output:\n%s", out.String())
	}
	pos := env.Game.Position()
	if pos.PieceAt("e4") != 'P' || pos.PieceAt("e5") != 'p' {
		t.Fatalf("expected e4 and e5 played, got %s", pos.FEN())
	}
	if !strings.Contains(out.String(), "Turn: White") {
		t.Fatalf("board was not shown:\n%s", out.String())
	}
}

func TestMoveCommandTwoArgs(t *testing.T) {
	reg, env, _ := newEnv(t, core.ColorWhite, map[string][2]string{"d4": {"d7", "d5"}})
	reg.Execute("m d2 d4")
	if env.Game.Position().PieceAt("d5") != 'p' {
		t.Fatalf("expected reply d7d5, got %s", env.Game.Position().FEN())
	}
}

func TestMoveCommandRejectsIllegal(t *testing.T) {
	reg, env, out := newEnv(t, core.ColorWhite, nil)
	before := env.Game.Position().FEN()

	reg.Execute("move e2e5")
	if !strings.Contains(out.String(), "Error") {
		t.Fatalf("expected error output, got:\n%s", out.String())
	}
	if env.Game.Position().FEN() != before {
		t.Fatalf("illegal move changed the position")
	}

	out.Reset()
	reg.Execute("move e2")
	if !strings.Contains(out.String(), "usage") {
		t.Fatalf("expected usage error, got:\n%s", out.String())
	}
}

func TestNewGameAsBlack(t *testing.T) {
	reg, env, _ := newEnv(t, core.ColorWhite, map[string][2]string{"": {"d2", "d4"}})
	reg.Execute("new black")

	if env.Game.PlayerColor() != core.ColorBlack {
		t.Fatalf("expected black player")
	}
	if env.Game.Position().PieceAt("d4") != 'P' {
		t.Fatalf("expected the opening reply, got %s", env.Game.Position().FEN())
	}
}

func TestPromoteWithoutPending(t *testing.T) {
	reg, _, out := newEnv(t, core.ColorWhite, nil)
	reg.Execute("promote q")
	if !strings.Contains(out.String(), core.ErrNoPendingPromotion.Error()) {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestRetryWithoutFailure(t *testing.T) {
	reg, _, out := newEnv(t, core.ColorWhite, nil)
	reg.Execute("retry")
	if !strings.Contains(out.String(), core.ErrNoRetry.Error()) {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestStateCommand(t *testing.T) {
	reg, _, out := newEnv(t, core.ColorWhite, nil)
	reg.Execute("state")

	var rs session.RenderState
	if err := json.Unmarshal(out.Bytes(), &rs); err != nil {
		t.Fatalf("state is not JSON: %v\n%s", err, out.String())
	}
	if rs.Turn != "white" || rs.PlayerColor != "white" || rs.Loading {
		t.Fatalf("unexpected state %+v", rs)
	}
}

func TestMovesCommand(t *testing.T) {
	reg, _, out := newEnv(t, core.ColorWhite, nil)
	reg.Execute("l")
	if !strings.Contains(out.String(), "Nf3(g1f3)") || !strings.Contains(out.String(), "e4(e2e4)") {
		t.Fatalf("missing moves:\n%s", out.String())
	}
}

func TestUnknownCommandAndExit(t *testing.T) {
	reg, _, out := newEnv(t, core.ColorWhite, nil)
	if !reg.Execute("fly") || !strings.Contains(out.String(), "Unknown command") {
		t.Fatalf("unknown command should be reported")
	}
	if !reg.Execute("   ") {
		t.Fatalf("blank input must not exit")
	}
	if reg.Execute("exit") {
		t.Fatalf("exit should stop the loop")
	}
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(core.HealthResponse{Status: "healthy", Time: 0, Storage: "ok"})
	}))
	defer srv.Close()

	reg, env, out := newEnv(t, core.ColorWhite, nil)
	env.Client = remote.New(srv.URL, zerolog.Nop())

	reg.Execute("health")
	if !strings.Contains(out.String(), "healthy") || !strings.Contains(out.String(), "Storage: ok") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	out.Reset()
	reg.Execute("url")
	if !strings.Contains(out.String(), srv.URL) {
		t.Fatalf("url not shown:\n%s", out.String())
	}
}
