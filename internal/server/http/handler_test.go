package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"chessbot/internal/core"
	"chessbot/internal/rules"
	"chessbot/internal/server/agent"
	"chessbot/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const afterE4 = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	svc, err := service.New(nil, agent.Random, 1, zerolog.Nop())
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return NewFiberApp(svc, true)
}

func do(t *testing.T, app *fiber.App, method, path, contentType, body string, out any) int {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestMoveEndpoint(t *testing.T) {
	app := newApp(t)
	var resp core.MoveResponse
	body := `{"fen":"` + afterE4 + `","move_from":"e2","move_to":"e4","promotion":null,"valid_moves":[],"is_check":false,"is_checkmate":false,"is_stalemate":false}`
	code := do(t, app, "POST", "/api/move", "application/json", body, &resp)
	if code != fiber.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if resp.NextMove == nil || resp.NewFEN == "" || resp.AgentUsed != agent.Random {
		t.Fatalf("unexpected response %+v", resp)
	}
	pos, _ := rules.ParsePosition(afterE4)
	if _, err := pos.Apply(core.Move{From: resp.NextMove.From, To: resp.NextMove.To}); err != nil {
		t.Fatalf("reply not legal: %v", err)
	}
}

func TestMoveEndpointGameOver(t *testing.T) {
	app := newApp(t)
	var resp core.MoveResponse
	code := do(t, app, "POST", "/api/move", "application/json", `{"fen":"`+afterE4+`","is_checkmate":true}`, &resp)
	if code != fiber.StatusOK || !resp.GameOver || resp.NextMove != nil {
		t.Fatalf("expected game over, got %d %+v", code, resp)
	}
}

func TestMoveEndpointErrors(t *testing.T) {
	app := newApp(t)
	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		code        string
	}{
		{"invalid fen", "application/json", `{"fen":"garbage"}`, fiber.StatusBadRequest, core.ErrCodeInvalidFEN},
		{"missing fen", "application/json", `{"move_from":"e2"}`, fiber.StatusBadRequest, core.ErrCodeInvalidRequest},
		{"bad square", "application/json", `{"fen":"` + afterE4 + `","move_from":"e22"}`, fiber.StatusBadRequest, core.ErrCodeInvalidRequest},
		{"bad promotion", "application/json", `{"fen":"` + afterE4 + `","promotion":"k"}`, fiber.StatusBadRequest, core.ErrCodeInvalidRequest},
		{"malformed json", "application/json", `{"fen":`, fiber.StatusBadRequest, core.ErrCodeInvalidRequest},
		{"wrong content type", "text/plain", `fen`, fiber.StatusUnsupportedMediaType, core.ErrCodeInvalidContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var er core.ErrorResponse
			code := do(t, app, "POST", "/api/move", tt.contentType, tt.body, &er)
			if code != tt.status || er.Code != tt.code {
				t.Fatalf("got %d %+v, want %d %s", code, er, tt.status, tt.code)
			}
		})
	}
}

func TestInvalidFENMessage(t *testing.T) {
	app := newApp(t)
	var er core.ErrorResponse
	do(t, app, "POST", "/api/move", "application/json", `{"fen":"garbage"}`, &er)
	if er.Error != "Invalid FEN string" || er.Message != "Failed to update board state" {
		t.Fatalf("unexpected error body %+v", er)
	}
}

func TestResetStatusHealthIndex(t *testing.T) {
	app := newApp(t)

	do(t, app, "POST", "/api/move", "application/json", `{"fen":"`+afterE4+`"}`, nil)

	var st core.StatusResponse
	if code := do(t, app, "GET", "/api/status", "", "", &st); code != fiber.StatusOK {
		t.Fatalf("status code %d", code)
	}
	if st.Requests != 1 || st.CurrentFEN == rules.Initial().FEN() {
		t.Fatalf("unexpected status %+v", st)
	}

	var rs core.ResetResponse
	if code := do(t, app, "POST", "/api/reset", "application/json", "", &rs); code != fiber.StatusOK {
		t.Fatalf("reset code %d", code)
	}
	if rs.FEN != rules.Initial().FEN() || rs.Message != "Game reset successfully" {
		t.Fatalf("unexpected reset %+v", rs)
	}

	var h core.HealthResponse
	if code := do(t, app, "GET", "/health", "", "", &h); code != fiber.StatusOK || h.Status != "healthy" || h.Storage != "disabled" {
		t.Fatalf("unexpected health %d %+v", code, h)
	}

	var idx map[string]any
	if code := do(t, app, "GET", "/", "", "", &idx); code != fiber.StatusOK || idx["status"] != "running" {
		t.Fatalf("unexpected index %d %v", code, idx)
	}
}

func TestUnknownRoute(t *testing.T) {
	app := newApp(t)
	var er core.ErrorResponse
	code := do(t, app, "GET", "/api/nope", "", "", &er)
	if code != fiber.StatusNotFound || er.Code != core.ErrCodeNotFound {
		t.Fatalf("got %d %+v", code, er)
	}
}
