package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chessbot/internal/core"

	"github.com/rs/zerolog"
)

func TestRequestMoveRoundTrip(t *testing.T) {
	var got core.MoveRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/move" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"AI move successful","next_move":{"from":"e7","to":"e5","promotion":null}}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", zerolog.Nop())
	resp, err := c.RequestMove(context.Background(), &core.MoveRequest{
		FEN:      "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		MoveFrom: "e2",
		MoveTo:   "e4",
	})
	if err != nil {
		t.Fatalf("request move: %v", err)
	}
	if got.MoveFrom != "e2" || got.MoveTo != "e4" || got.Promotion != nil {
		t.Fatalf("server saw %+v", got)
	}
	if resp.NextMove == nil || resp.NextMove.From != "e7" || resp.NextMove.To != "e5" || resp.NextMove.Promotion != nil {
		t.Fatalf("unexpected next move %+v", resp.NextMove)
	}
	if resp.Terminal() {
		t.Fatalf("response should not be terminal")
	}
}

func TestRequestMoveSendsNullPromotion(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())
	if _, err := c.RequestMove(context.Background(), &core.MoveRequest{FEN: "x"}); err != nil {
		t.Fatalf("request move: %v", err)
	}
	v, ok := raw["promotion"]
	if !ok || v != nil {
		t.Fatalf("expected explicit null promotion, got %v (present=%v)", v, ok)
	}
	if raw["move_from"] != "" || raw["move_to"] != "" {
		t.Fatalf("expected empty squares, got %v %v", raw["move_from"], raw["move_to"])
	}
}

func TestRequestMoveNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid FEN string","message":"Failed to update board state","next_move":{"from":"e7","to":"e5"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())
	resp, err := c.RequestMove(context.Background(), &core.MoveRequest{FEN: "bad"})
	if resp != nil {
		t.Fatalf("non-success status must not yield a response body")
	}
	var te *core.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", te.StatusCode)
	}
	if te.Message != "Invalid FEN string: Failed to update board state" {
		t.Fatalf("unexpected message %q", te.Message)
	}
}

func TestRequestMoveUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, zerolog.Nop())
	_, err := c.RequestMove(context.Background(), &core.MoveRequest{FEN: "x"})
	var te *core.TransportError
	if !errors.As(err, &te) || te.StatusCode != 0 || te.Err == nil {
		t.Fatalf("expected network TransportError, got %#v", err)
	}
}

func TestRequestMoveMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": `))
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())
	_, err := c.RequestMove(context.Background(), &core.MoveRequest{FEN: "x"})
	var te *core.TransportError
	if !errors.As(err, &te) || te.Message != "malformed response body" {
		t.Fatalf("expected malformed body error, got %v", err)
	}
}

func TestStatusAndReset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/status":
			_, _ = w.Write([]byte(`{"status":"running","message":"ok","current_fen":"f","requests":3}`))
		case "/api/reset":
			_, _ = w.Write([]byte(`{"message":"Game reset successfully","fen":"start"}`))
		case "/health":
			_, _ = w.Write([]byte(`{"status":"healthy","time":1}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())
	ctx := context.Background()

	st, err := c.Status(ctx)
	if err != nil || st.Requests != 3 || st.Status != "running" {
		t.Fatalf("status: %+v %v", st, err)
	}
	rs, err := c.Reset(ctx)
	if err != nil || rs.FEN != "start" {
		t.Fatalf("reset: %+v %v", rs, err)
	}
	h, err := c.Health(ctx)
	if err != nil || h.Status != "healthy" {
		t.Fatalf("health: %+v %v", h, err)
	}
}

func TestVerboseDumpsBodiesAboveLoggerLevel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"running","message":"up","current_fen":"x","requests":7}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	c := New(srv.URL, zerolog.New(&buf).Level(zerolog.WarnLevel))

	if _, err := c.Status(context.Background()); err != nil {
		t.Fatalf("status: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("quiet client logged %q", buf.String())
	}

	c.SetVerbose(true)
	if _, err := c.Status(context.Background()); err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(buf.String(), `"requests":7`) {
		t.Fatalf("verbose client did not dump the body: %q", buf.String())
	}
}
